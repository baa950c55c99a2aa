package audionode

import (
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"oscmix/internal/audiobuf"
	"oscmix/internal/mediacodec"
)

// fileSourceQueueDepth is the default bounded read-ahead queue capacity.
const fileSourceQueueDepth = 10

// FileSource decodes a media file into a bounded queue of internal-format
// buffers on a background reader goroutine.
type FileSource struct {
	base
	codec mediacodec.Codec
	path  string
	loop  bool

	queue    chan audiobuf.Buffer
	finished atomic.Bool
	stopCh   chan struct{}
	wg       sync.WaitGroup

	lastMu sync.Mutex
	last   audiobuf.Buffer
}

// NewFileSource constructs a file-reading source with one output pad.
func NewFileSource(name string, codec mediacodec.Codec) *FileSource {
	return &FileSource{base: newBase(name, TypeFileSource, 0, 1), codec: codec}
}

func (n *FileSource) Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool {
	if !n.canConfigure() {
		n.setLastError("configure: wrong state " + n.state.String())
		return false
	}
	path, ok := params["path"]
	if !ok || path == "" {
		n.setLastError("path parameter required")
		return false
	}
	loop := false
	if v, ok := params["loop"]; ok {
		loop, _ = strconv.ParseBool(v)
	}
	n.path = path
	n.loop = loop
	n.rate, n.block, n.format, n.layout = rate, block, format, layout
	n.state = Configured
	return true
}

func (n *FileSource) Start() bool {
	if !n.canStart() {
		n.setLastError("start: wrong state " + n.state.String())
		return false
	}
	n.queue = make(chan audiobuf.Buffer, fileSourceQueueDepth)
	n.stopCh = make(chan struct{})
	n.finished.Store(false)
	reader := n.codec.NewReader()
	if _, _, _, err := reader.Open(n.path); err != nil {
		n.setLastError("open: " + err.Error())
		return false
	}
	n.state = Running
	n.wg.Add(1)
	go n.readLoop(reader)
	return true
}

func (n *FileSource) readLoop(reader mediacodec.Reader) {
	defer n.wg.Done()
	defer reader.Close()
	for {
		buf, err := reader.ReadBlock(n.block, n.rate, n.format, n.layout)
		if err == io.EOF {
			if n.loop {
				if serr := reader.Seek(); serr != nil {
					n.setLastError("seek: " + serr.Error())
					n.finished.Store(true)
					return
				}
				continue
			}
			n.finished.Store(true)
			return
		}
		if err != nil {
			n.setLastError("read: " + err.Error())
			n.finished.Store(true)
			return
		}
		select {
		case n.queue <- buf:
		case <-n.stopCh:
			buf.Release()
			return
		}
	}
}

// Finished reports whether the source has hit EOF with loop=false.
func (n *FileSource) Finished() bool { return n.finished.Load() }

func (n *FileSource) Stop() bool {
	if !n.canStop() {
		n.setLastError("stop: wrong state " + n.state.String())
		return false
	}
	close(n.stopCh)
	n.wg.Wait()
	n.state = Stopped
	return true
}

// Process is a no-op: the queue is filled by the background reader.
func (n *FileSource) Process() bool { return true }

// Output returns the head of the read-ahead queue if available, otherwise
// an all-zero buffer of the configured shape.
func (n *FileSource) Output(pad int) audiobuf.Buffer {
	if pad != 0 {
		return audiobuf.Buffer{}
	}
	select {
	case buf := <-n.queue:
		n.lastMu.Lock()
		n.last = buf
		n.lastMu.Unlock()
		return buf
	default:
		silent, _ := audiobuf.New(n.block, n.rate, n.format, n.layout)
		return silent
	}
}
