package audionode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/audiobuf"
)

func TestProcessorLifecycleTransitions(t *testing.T) {
	p := NewProcessor("gain")
	assert.Equal(t, Unconfigured, p.State())
	assert.False(t, p.Start(), "start before configure must fail")

	ok := p.Configure(Params{"recipe": "gain=2.0"}, 48000, 64, audiobuf.F32, audiobuf.Mono())
	require.True(t, ok)
	assert.Equal(t, Configured, p.State())

	require.True(t, p.Start())
	assert.Equal(t, Running, p.State())
	assert.False(t, p.Configure(nil, 48000, 64, audiobuf.F32, audiobuf.Mono()), "configure while running must fail")

	require.True(t, p.Stop())
	assert.Equal(t, Stopped, p.State())

	// Reverse transition after stop is permitted only after re-configure.
	assert.False(t, p.Start())
	require.True(t, p.Configure(nil, 48000, 64, audiobuf.F32, audiobuf.Mono()))
	require.True(t, p.Start())
}

func TestProcessorGainAndFrameCountPreserved(t *testing.T) {
	p := NewProcessor("gain")
	require.True(t, p.Configure(Params{"recipe": "gain=0.5"}, 48000, 16, audiobuf.F32, audiobuf.Mono()))
	require.True(t, p.Start())

	in, err := audiobuf.New(16, 48000, audiobuf.F32, audiobuf.Mono())
	require.NoError(t, err)
	float64ToSample(in.ChannelPtr(0), 0, audiobuf.F32, 1.0)

	p.SetInput(0, in)
	require.True(t, p.Process())
	out := p.Output(0)
	assert.Equal(t, 16, out.Frames())
	got := sampleToFloat64(out.ChannelPtr(0), 0, audiobuf.F32)
	assert.InDelta(t, 0.5, got, 0.001)
}

func TestProcessorRemixMonoToStereo(t *testing.T) {
	p := NewProcessor("remix")
	require.True(t, p.Configure(Params{"recipe": "remix=stereo"}, 48000, 8, audiobuf.F32, audiobuf.Stereo()))
	require.True(t, p.Start())

	in, err := audiobuf.New(8, 48000, audiobuf.F32, audiobuf.Mono())
	require.NoError(t, err)
	float64ToSample(in.ChannelPtr(0), 0, audiobuf.F32, 0.75)

	p.SetInput(0, in)
	require.True(t, p.Process())
	out := p.Output(0)
	assert.Equal(t, 2, out.Layout().Channels())
	l := sampleToFloat64(out.ChannelPtr(0), 0, audiobuf.F32)
	r := sampleToFloat64(out.ChannelPtr(1), 0, audiobuf.F32)
	assert.InDelta(t, 0.75, l, 0.001)
	assert.InDelta(t, 0.75, r, 0.001)
}

func TestAsioSourceReceivePublishesConvertedBuffer(t *testing.T) {
	driver := newFakeDriver(48000, 32)
	driver.fillInputTone(0, 0.5)
	driver.fillInputTone(1, -0.25)

	src := NewAsioSource("asio_in", driver)
	require.True(t, src.Configure(Params{"channels": "in1,in2"}, 48000, 32, audiobuf.F32, audiobuf.Stereo()))
	require.True(t, src.Start())

	src.Receive(0)
	out := src.Output(0)
	require.True(t, out.Valid())
	l := sampleToFloat64(out.ChannelPtr(0), 0, audiobuf.F32)
	r := sampleToFloat64(out.ChannelPtr(1), 0, audiobuf.F32)
	assert.InDelta(t, 0.5, l, 0.01)
	assert.InDelta(t, -0.25, r, 0.01)
}

func TestAsioSinkProvideWritesSilenceWithoutInput(t *testing.T) {
	driver := newFakeDriver(48000, 16)
	sink := NewAsioSink("asio_out", driver)
	require.True(t, sink.Configure(Params{"channels": "out1,out2"}, 48000, 16, audiobuf.F32, audiobuf.Stereo()))
	require.True(t, sink.Start())

	// Poison the driver's output buffer so we can prove it gets zeroed.
	for i := range driver.out[0] {
		driver.out[0][i] = 0xFF
	}
	sink.Provide(0)
	for _, b := range driver.out[0] {
		assert.Zero(t, b)
	}
}

func TestFileSourceQueuesAndReportsFinished(t *testing.T) {
	src := NewFileSource("file_in", fakeCodec{})
	require.True(t, src.Configure(Params{"path": "in.raw"}, 48000, 16, audiobuf.F32, audiobuf.Stereo()))
	require.True(t, src.Start())

	deadline := time.Now().Add(time.Second)
	for !src.Finished() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, src.Finished())
	require.True(t, src.Stop())
}

func TestFileSinkWritesAndRenames(t *testing.T) {
	sink := NewFileSink("file_out", fakeCodec{})
	require.True(t, sink.Configure(Params{"path": t.TempDir() + "/out.raw"}, 48000, 16, audiobuf.F32, audiobuf.Stereo()))
	require.True(t, sink.Start())

	buf, err := audiobuf.New(16, 48000, audiobuf.F32, audiobuf.Stereo())
	require.NoError(t, err)
	require.True(t, sink.SetInput(0, buf))

	require.True(t, sink.Stop())
}
