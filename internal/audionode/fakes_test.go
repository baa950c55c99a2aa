package audionode

import (
	"encoding/binary"
	"io"
	"math"

	"oscmix/internal/asiodriver"
	"oscmix/internal/audiobuf"
	"oscmix/internal/mediacodec"
)

// fakeDriver is a minimal in-memory asiodriver.Driver for tests: two input
// and two output channels, F32 native format, fixed rate/block.
type fakeDriver struct {
	rate, block int
	in          [][]byte // per channel, per call overwritten by test
	out         [][]byte
}

func newFakeDriver(rate, block int) *fakeDriver {
	d := &fakeDriver{rate: rate, block: block}
	d.in = make([][]byte, 2)
	d.out = make([][]byte, 2)
	for i := range d.in {
		d.in[i] = make([]byte, block*4)
		d.out[i] = make([]byte, block*4)
	}
	return d
}

func (d *fakeDriver) Open(string) error { return nil }
func (d *fakeDriver) Channels() ([]asiodriver.ChannelInfo, error) {
	return []asiodriver.ChannelInfo{
		{Index: 0, Name: "in1", Input: true},
		{Index: 1, Name: "in2", Input: true},
		{Index: 0, Name: "out1", Input: false},
		{Index: 1, Name: "out2", Input: false},
	}, nil
}
func (d *fakeDriver) NativeFormat() asiodriver.SampleFormat { return asiodriver.NativeF32 }
func (d *fakeDriver) SampleRate() int                       { return d.rate }
func (d *fakeDriver) BlockSize() int                        { return d.block }
func (d *fakeDriver) Start(asiodriver.Callback) error       { return nil }
func (d *fakeDriver) Stop() error                           { return nil }
func (d *fakeDriver) Close() error                          { return nil }
func (d *fakeDriver) InputBuffer(_, channel int) []byte     { return d.in[channel] }
func (d *fakeDriver) OutputBuffer(_, channel int) []byte    { return d.out[channel] }

func (d *fakeDriver) fillInputTone(channel int, value float32) {
	for f := 0; f < d.block; f++ {
		binary.LittleEndian.PutUint32(d.in[channel][f*4:], math.Float32bits(value))
	}
}

// fakeCodec implements mediacodec.Codec with an in-memory generated tone
// source for Reader, and a no-op sink for Writer that records call counts.
type fakeCodec struct{}

func (fakeCodec) NewReader() mediacodec.Reader { return &fakeReader{} }
func (fakeCodec) NewWriter() mediacodec.Writer { return &fakeWriter{} }

type fakeReader struct {
	blocksLeft int
	opened     bool
}

func (r *fakeReader) Open(path string) (int, audiobuf.SampleFormat, audiobuf.Layout, error) {
	r.opened = true
	r.blocksLeft = 3
	return 48000, audiobuf.F32, audiobuf.Stereo(), nil
}

func (r *fakeReader) ReadBlock(frames int, rate int, format audiobuf.SampleFormat, layout audiobuf.Layout) (audiobuf.Buffer, error) {
	if r.blocksLeft <= 0 {
		return audiobuf.Buffer{}, io.EOF
	}
	r.blocksLeft--
	return audiobuf.New(frames, rate, format, layout)
}

func (r *fakeReader) Seek() error { r.blocksLeft = 3; return nil }
func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	blocks  int
	flushed bool
	closed  bool
}

func (w *fakeWriter) Create(path string, rate int, layout audiobuf.Layout, format, codec string, bitrate int) error {
	return nil
}
func (w *fakeWriter) WriteBlock(buf audiobuf.Buffer) error { w.blocks++; return nil }
func (w *fakeWriter) Flush() error                         { w.flushed = true; return nil }
func (w *fakeWriter) Close() error                         { w.closed = true; return nil }
