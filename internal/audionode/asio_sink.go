package audionode

import (
	"oscmix/internal/asiodriver"
	"oscmix/internal/audiobuf"
)

// AsioSink is a hardware playback node, the mirror of AsioSource.
type AsioSink struct {
	base
	driver    asiodriver.Driver
	channels  []int
	nativeFmt audiobuf.SampleFormat
}

// NewAsioSink constructs a sink bound to driver, with one input pad.
func NewAsioSink(name string, driver asiodriver.Driver) *AsioSink {
	return &AsioSink{base: newBase(name, TypeAsioSink, 1, 0), driver: driver}
}

func (n *AsioSink) Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool {
	if !n.canConfigure() {
		n.setLastError("configure: wrong state " + n.state.String())
		return false
	}
	chans, err := resolveChannels(params["channels"], n.driver, false)
	if err != nil {
		n.setLastError(err.Error())
		return false
	}
	nf, ok := nativeToInternalFormat(n.driver.NativeFormat())
	if !ok {
		n.setLastError("unsupported driver sample format")
		return false
	}
	n.channels = chans
	n.nativeFmt = nf
	n.rate, n.block, n.format, n.layout = rate, block, format, layout
	n.state = Configured
	return true
}

func (n *AsioSink) Start() bool {
	if !n.canStart() {
		n.setLastError("start: wrong state " + n.state.String())
		return false
	}
	n.state = Running
	return true
}

func (n *AsioSink) Stop() bool {
	if !n.canStop() {
		n.setLastError("stop: wrong state " + n.state.String())
		return false
	}
	n.state = Stopped
	return true
}

// Process is a no-op: AsioSink is driven by Provide inside the driver
// callback, not by the graph's per-tick routine.
func (n *AsioSink) Process() bool { return true }

// Provide is invoked from the driver callback after the graph's per-tick
// routine has delivered a buffer to pad 0. It converts to native format and
// writes into each configured hardware output buffer. If no input buffer is
// available it writes silence.
func (n *AsioSink) Provide(doubleBufferIndex int) {
	if n.state != Running {
		return
	}
	in := n.inputPads[0]
	for c, hwChan := range n.channels {
		native := n.driver.OutputBuffer(doubleBufferIndex, hwChan)
		if native == nil {
			continue
		}
		if !in.Valid() {
			silenceFill(native)
			continue
		}
		convertChannelToNative(native, n.nativeFmt, in, c, n.block)
	}
}
