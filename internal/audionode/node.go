// Package audionode implements the AudioNode contract and its five
// variants: AsioSource, AsioSink, FileSource, FileSink, Processor.
package audionode

import (
	"sync"

	"oscmix/internal/audiobuf"
)

// Type tags the concrete kind of a node.
type Type int

const (
	TypeAsioSource Type = iota
	TypeAsioSink
	TypeFileSource
	TypeFileSink
	TypeProcessor
)

func (t Type) String() string {
	switch t {
	case TypeAsioSource:
		return "AsioSource"
	case TypeAsioSink:
		return "AsioSink"
	case TypeFileSource:
		return "FileSource"
	case TypeFileSink:
		return "FileSink"
	case TypeProcessor:
		return "Processor"
	default:
		return "unknown"
	}
}

// Lifecycle is a node's configure/start/stop state machine.
type Lifecycle int

const (
	Unconfigured Lifecycle = iota
	Configured
	Running
	Stopped
)

func (l Lifecycle) String() string {
	switch l {
	case Unconfigured:
		return "Unconfigured"
	case Configured:
		return "Configured"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "unknown"
	}
}

// Params is the per-node configuration string map parsed at configure time
// (e.g. "path", "loop", "channels", "recipe").
type Params map[string]string

// Node is the common contract every node type implements. Implementations
// are not required to be safe for concurrent calls to multiple methods at
// once except where documented (last-error access is the one exception:
// LastError is guarded per-node and may be called from any thread).
type Node interface {
	Name() string
	Type() Type
	State() Lifecycle
	InputPads() int
	OutputPads() int

	Configure(params Params, rate, block int, format audiobuf.SampleFormat, layout audiobuf.Layout) bool
	Start() bool
	Stop() bool

	// Process runs one tick of work for non-source/sink nodes driven by the
	// graph's per-tick routine. AsioSource/AsioSink are driven instead by
	// the driver callback (receive/provide) and treat Process as a no-op.
	Process() bool

	Output(pad int) audiobuf.Buffer
	SetInput(pad int, buf audiobuf.Buffer) bool

	LastError() string
}

// base implements the bookkeeping shared by every node variant: name,
// lifecycle, pad buffers, and a mutex-guarded last-error string.
type base struct {
	name   string
	typ    Type
	state  Lifecycle
	rate   int
	block  int
	format audiobuf.SampleFormat
	layout audiobuf.Layout
	inputPads  []audiobuf.Buffer
	outputPads []audiobuf.Buffer

	errMu   sync.Mutex
	lastErr string
}

func newBase(name string, typ Type, inPads, outPads int) base {
	return base{
		name:       name,
		typ:        typ,
		state:      Unconfigured,
		inputPads:  make([]audiobuf.Buffer, inPads),
		outputPads: make([]audiobuf.Buffer, outPads),
	}
}

func (b *base) Name() string         { return b.name }
func (b *base) Type() Type           { return b.typ }
func (b *base) State() Lifecycle     { return b.state }
func (b *base) InputPads() int       { return len(b.inputPads) }
func (b *base) OutputPads() int      { return len(b.outputPads) }

func (b *base) Output(pad int) audiobuf.Buffer {
	if pad < 0 || pad >= len(b.outputPads) {
		return audiobuf.Buffer{}
	}
	return b.outputPads[pad]
}

func (b *base) SetInput(pad int, buf audiobuf.Buffer) bool {
	if pad < 0 || pad >= len(b.inputPads) {
		return false
	}
	b.inputPads[pad] = buf
	return true
}

func (b *base) setLastError(msg string) {
	b.errMu.Lock()
	b.lastErr = msg
	b.errMu.Unlock()
}

func (b *base) LastError() string {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.lastErr
}

// canConfigure reports whether configure is legal from the current state
// (Unconfigured, or Stopped after an explicit re-configure).
func (b *base) canConfigure() bool {
	return b.state == Unconfigured || b.state == Stopped
}

func (b *base) canStart() bool { return b.state == Configured }
func (b *base) canStop() bool  { return b.state == Running }
