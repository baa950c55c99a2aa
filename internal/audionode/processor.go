package audionode

import (
	"strconv"
	"strings"

	"oscmix/internal/audiobuf"
)

// Processor applies a stateless per-block transform described by a string
// recipe: "gain=<linear>" scales every sample, "remix=mono" or
// "remix=stereo" collapses/duplicates channels, and reformatting to the
// node's configured format/layout always happens implicitly via the
// sample-format conversion helpers. Frame count is always preserved.
type Processor struct {
	base
	gain float64
	remix string // "", "mono", "stereo"
}

// NewProcessor constructs a one-in/one-out transform node.
func NewProcessor(name string) *Processor {
	return &Processor{base: newBase(name, TypeProcessor, 1, 1), gain: 1.0}
}

func (n *Processor) Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool {
	if !n.canConfigure() {
		n.setLastError("configure: wrong state " + n.state.String())
		return false
	}
	n.gain = 1.0
	n.remix = ""
	if recipe, ok := params["recipe"]; ok {
		for _, directive := range strings.Split(recipe, ",") {
			directive = strings.TrimSpace(directive)
			if directive == "" {
				continue
			}
			kv := strings.SplitN(directive, "=", 2)
			if len(kv) != 2 {
				n.setLastError("malformed recipe directive: " + directive)
				return false
			}
			key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
			switch key {
			case "gain":
				g, err := strconv.ParseFloat(val, 64)
				if err != nil {
					n.setLastError("bad gain: " + val)
					return false
				}
				n.gain = g
			case "remix":
				if val != "mono" && val != "stereo" {
					n.setLastError("unsupported remix target: " + val)
					return false
				}
				n.remix = val
			default:
				n.setLastError("unknown recipe directive: " + key)
				return false
			}
		}
	}
	n.rate, n.block, n.format, n.layout = rate, block, format, layout
	n.state = Configured
	return true
}

func (n *Processor) Start() bool {
	if !n.canStart() {
		n.setLastError("start: wrong state " + n.state.String())
		return false
	}
	n.state = Running
	return true
}

func (n *Processor) Stop() bool {
	if !n.canStop() {
		n.setLastError("stop: wrong state " + n.state.String())
		return false
	}
	n.state = Stopped
	return true
}

// Process reads input pad 0, applies the configured transform, and
// publishes on output pad 0 with the input's frame count (a silent buffer
// of the configured block size when no input is present).
func (n *Processor) Process() bool {
	in := n.inputPads[0]
	if !in.Valid() {
		silent, err := audiobuf.New(n.block, n.rate, n.format, n.layout)
		if err != nil {
			n.setLastError("process: " + err.Error())
			return false
		}
		n.outputPads[0] = silent
		return true
	}

	frames := in.Frames()
	out, err := audiobuf.New(frames, n.rate, n.format, n.layout)
	if err != nil {
		n.setLastError("process: " + err.Error())
		return false
	}

	srcChans := in.Layout().Channels()
	dstChans := out.Layout().Channels()

	switch {
	case n.remix == "mono" && srcChans > 1:
		mixChannel(out, 0, in, allChannels(srcChans))
	case n.remix == "stereo" && srcChans == 1:
		mixChannel(out, 0, in, []int{0})
		if dstChans > 1 {
			mixChannel(out, 1, in, []int{0})
		}
	default:
		cnt := minInt(srcChans, dstChans)
		for c := 0; c < cnt; c++ {
			copySamplesGained(out, c, in, c, frames, 1.0)
		}
	}

	if n.gain != 1.0 {
		for c := 0; c < dstChans; c++ {
			applyGainInPlace(out, c, n.gain)
		}
	}

	n.outputPads[0] = out
	return true
}

func allChannels(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
