package audionode

import (
	"os"
	"strconv"
	"sync"

	"oscmix/internal/audiobuf"
	"oscmix/internal/mediacodec"
)

// fileSinkQueueDepth is the bounded encode queue capacity.
const fileSinkQueueDepth = 10

// FileSink encodes a bounded queue of incoming buffers to a media file on a
// background writer goroutine. It writes to a temporary path and renames
// atomically on a clean Stop.
type FileSink struct {
	base
	codec      mediacodec.Codec
	path       string
	tmpPath    string
	fileFormat string
	codecID    string
	bitrate    int

	queue chan audiobuf.Buffer
	wg    sync.WaitGroup

	writeErrMu sync.Mutex
	writeErr   error
}

// NewFileSink constructs a file-writing sink with one input pad.
func NewFileSink(name string, codec mediacodec.Codec) *FileSink {
	return &FileSink{base: newBase(name, TypeFileSink, 1, 0), codec: codec}
}

func (n *FileSink) Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool {
	if !n.canConfigure() {
		n.setLastError("configure: wrong state " + n.state.String())
		return false
	}
	path, ok := params["path"]
	if !ok || path == "" {
		n.setLastError("path parameter required")
		return false
	}
	bitrate := 0
	if v, ok := params["bitrate"]; ok {
		bitrate, _ = strconv.Atoi(v)
	}
	n.path = path
	n.tmpPath = path + ".tmp"
	n.fileFormat = params["format"]
	n.codecID = params["codec"]
	n.bitrate = bitrate
	n.rate, n.block, n.format, n.layout = rate, block, format, layout
	n.state = Configured
	return true
}

func (n *FileSink) Start() bool {
	if !n.canStart() {
		n.setLastError("start: wrong state " + n.state.String())
		return false
	}
	writer := n.codec.NewWriter()
	if err := writer.Create(n.tmpPath, n.rate, n.layout, n.fileFormat, n.codecID, n.bitrate); err != nil {
		n.setLastError("create: " + err.Error())
		return false
	}
	n.queue = make(chan audiobuf.Buffer, fileSinkQueueDepth)
	n.state = Running
	n.wg.Add(1)
	go n.writeLoop(writer)
	return true
}

func (n *FileSink) writeLoop(writer mediacodec.Writer) {
	defer n.wg.Done()
	for buf := range n.queue {
		if err := writer.WriteBlock(buf); err != nil {
			n.writeErrMu.Lock()
			n.writeErr = err
			n.writeErrMu.Unlock()
			n.setLastError("write: " + err.Error())
		}
		buf.Release()
	}
	if err := writer.Flush(); err != nil {
		n.setLastError("flush: " + err.Error())
	}
	if err := writer.Close(); err != nil {
		n.setLastError("close: " + err.Error())
		return
	}
	n.writeErrMu.Lock()
	failed := n.writeErr != nil
	n.writeErrMu.Unlock()
	if !failed {
		_ = os.Rename(n.tmpPath, n.path)
	}
}

func (n *FileSink) Stop() bool {
	if !n.canStop() {
		n.setLastError("stop: wrong state " + n.state.String())
		return false
	}
	close(n.queue)
	n.wg.Wait()
	n.state = Stopped
	return true
}

// Process is a no-op: SetInput enqueues directly to the writer goroutine.
func (n *FileSink) Process() bool { return true }

// SetInput enqueues buf for encoding, retaining a reference for the
// background writer. Returns false (without blocking) if the queue is
// full, leaving the caller free to drop or retry the buffer.
func (n *FileSink) SetInput(pad int, buf audiobuf.Buffer) bool {
	if pad != 0 {
		return false
	}
	select {
	case n.queue <- buf.Retain():
		return true
	default:
		return false
	}
}
