package audionode

import (
	"strconv"
	"strings"

	"oscmix/internal/asiodriver"
	"oscmix/internal/audiobuf"
)

// AsioSource is a hardware capture node. It holds a set of driver
// channel indices (parsed from "channels" as numeric indices or names
// resolved via the driver's channel table) and, on Configure, validates
// the driver's native format is supported.
type AsioSource struct {
	base
	driver    asiodriver.Driver
	channels  []int
	nativeFmt audiobuf.SampleFormat
}

// NewAsioSource constructs a source bound to driver, with one output pad.
func NewAsioSource(name string, driver asiodriver.Driver) *AsioSource {
	n := &AsioSource{base: newBase(name, TypeAsioSource, 0, 1), driver: driver}
	return n
}

func (n *AsioSource) Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool {
	if !n.canConfigure() {
		n.setLastError("configure: wrong state " + n.state.String())
		return false
	}
	chans, err := resolveChannels(params["channels"], n.driver, true)
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

func (n *AsioSource) Start() bool {
	if !n.canStart() {
		n.setLastError("start: wrong state " + n.state.String())
		return false
	}
	n.state = Running
	return true
}

func (n *AsioSource) Stop() bool {
	if !n.canStop() {
		n.setLastError("stop: wrong state " + n.state.String())
		return false
	}
	n.state = Stopped
	return true
}

// Process is a no-op: AsioSource is driven by Receive inside the driver
// callback, not by the graph's per-tick routine.
func (n *AsioSource) Process() bool { return true }

// Receive is invoked from the driver callback with one native buffer per
// configured channel already resolved by the driver (InputBuffer). It
// converts into the node's internal format/layout and publishes on pad 0.
func (n *AsioSource) Receive(doubleBufferIndex int) {
	if n.state != Running {
		return
	}
	out, err := audiobuf.New(n.block, n.rate, n.format, n.layout)
	if err != nil {
		n.setLastError("receive: " + err.Error())
		return
	}
	for c, hwChan := range n.channels {
		native := n.driver.InputBuffer(doubleBufferIndex, hwChan)
		if native == nil {
			n.setLastError("receive: no hardware buffer for channel")
			continue
		}
		convertChannelNative(out, c, n.block, native, n.nativeFmt)
	}
	n.outputPads[0] = out
}

// resolveChannels parses a comma-separated "channels" parameter of either
// numeric indices or channel names, resolved via the driver's channel table.
func resolveChannels(spec string, driver asiodriver.Driver, input bool) ([]int, error) {
	if spec == "" {
		return nil, newConfigErr("channels parameter required")
	}
	infos, err := driver.Channels()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(infos))
	for _, ci := range infos {
		if ci.Input == input {
			byName[ci.Name] = ci.Index
		}
	}
	parts := strings.Split(spec, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if idx, err := strconv.Atoi(p); err == nil {
			out = append(out, idx)
			continue
		}
		if idx, ok := byName[p]; ok {
			out = append(out, idx)
			continue
		}
		return nil, newConfigErr("unknown channel: " + p)
	}
	return out, nil
}
