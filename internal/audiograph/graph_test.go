package audiograph

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/audiobuf"
	"oscmix/internal/audionode"
	"oscmix/internal/mediacodec"
)

func TestOrderRespectsEdges(t *testing.T) {
	g := New(SoftClocked, 48000, 16)

	sink := audionode.NewProcessor("sink_like") // stand-in processor node used purely for ordering
	proc := audionode.NewProcessor("proc")
	src := audionode.NewProcessor("src_like")

	require.NoError(t, g.AddNode(sink))
	require.NoError(t, g.AddNode(proc))
	require.NoError(t, g.AddNode(src))

	require.NoError(t, g.Connect(Connection{SrcNode: "src_like", SrcPad: 0, DstNode: "proc", DstPad: 0}))
	require.NoError(t, g.Connect(Connection{SrcNode: "proc", SrcPad: 0, DstNode: "sink_like", DstPad: 0}))

	order, err := g.computeOrder()
	require.NoError(t, err)
	index := func(name string) int {
		for i, n := range order {
			if n == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index("src_like"), index("proc"))
	assert.Less(t, index("proc"), index("sink_like"))
	assert.Len(t, order, 3)
}

func TestConnectRejectsFanIn(t *testing.T) {
	g := New(SoftClocked, 48000, 16)
	a := audionode.NewProcessor("a")
	b := audionode.NewProcessor("b")
	dst := audionode.NewProcessor("dst")
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))
	require.NoError(t, g.AddNode(dst))

	require.NoError(t, g.Connect(Connection{SrcNode: "a", SrcPad: 0, DstNode: "dst", DstPad: 0}))
	err := g.Connect(Connection{SrcNode: "b", SrcPad: 0, DstNode: "dst", DstPad: 0})
	assert.Error(t, err)
}

func TestCycleRefusesToStart(t *testing.T) {
	g := New(SoftClocked, 48000, 16)
	a := audionode.NewProcessor("a")
	b := audionode.NewProcessor("b")
	require.NoError(t, g.AddNode(a))
	require.NoError(t, g.AddNode(b))
	require.NoError(t, g.Connect(Connection{SrcNode: "a", SrcPad: 0, DstNode: "b", DstPad: 0}))
	require.NoError(t, g.Connect(Connection{SrcNode: "b", SrcPad: 0, DstNode: "a", DstPad: 0}))

	err := g.Start()
	assert.Error(t, err)
}

// oneBlockCodec is a trivial mediacodec.Codec whose reader produces exactly one
// block before EOF, for a deterministic file-to-file SoftClocked run.
type oneBlockCodec struct{}

func (oneBlockCodec) NewReader() mediacodec.Reader { return &oneBlockReader{} }
func (oneBlockCodec) NewWriter() mediacodec.Writer { return &captureWriter{} }

type oneBlockReader struct{ done bool }

func (r *oneBlockReader) Open(string) (int, audiobuf.SampleFormat, audiobuf.Layout, error) {
	return 48000, audiobuf.F32, audiobuf.Mono(), nil
}
func (r *oneBlockReader) ReadBlock(frames, rate int, format audiobuf.SampleFormat, layout audiobuf.Layout) (audiobuf.Buffer, error) {
	if r.done {
		return audiobuf.Buffer{}, io.EOF
	}
	r.done = true
	return audiobuf.New(frames, rate, format, layout)
}
func (r *oneBlockReader) Seek() error  { r.done = false; return nil }
func (r *oneBlockReader) Close() error { return nil }

type captureWriter struct{ blocks int }

func (w *captureWriter) Create(string, int, audiobuf.Layout, string, string, int) error { return nil }
func (w *captureWriter) WriteBlock(audiobuf.Buffer) error                               { w.blocks++; return nil }
func (w *captureWriter) Flush() error                                                   { return nil }
func (w *captureWriter) Close() error                                                   { return nil }

func TestFileToFileSoftClockedStopsAtEOF(t *testing.T) {
	g := New(SoftClocked, 48000, 16)
	src := audionode.NewFileSource("file_src", oneBlockCodec{})
	sink := audionode.NewFileSink("file_sink", oneBlockCodec{})
	require.True(t, src.Configure(audionode.Params{"path": "a.raw"}, 48000, 16, audiobuf.F32, audiobuf.Mono()))
	require.True(t, sink.Configure(audionode.Params{"path": "b.raw"}, 48000, 16, audiobuf.F32, audiobuf.Mono()))

	require.NoError(t, g.AddNode(src))
	require.NoError(t, g.AddNode(sink))
	require.NoError(t, g.Connect(Connection{SrcNode: "file_src", SrcPad: 0, DstNode: "file_sink", DstPad: 0}))

	require.NoError(t, g.Start())

	deadline := time.Now().Add(2 * time.Second)
	for g.State() == RunningState && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, Idle, g.State())
}
