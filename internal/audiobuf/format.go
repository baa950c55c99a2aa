package audiobuf

// SampleFormat names the PCM sample encoding of a Buffer's storage.
type SampleFormat int

const (
	S16 SampleFormat = iota
	S24in32
	S32
	F32
	F64
)

// BytesPerSample returns the storage width of one sample in f.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case S16:
		return 2
	case S24in32, S32, F32:
		return 4
	case F64:
		return 8
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case S16:
		return "S16"
	case S24in32:
		return "S24in32"
	case S32:
		return "S32"
	case F32:
		return "F32"
	case F64:
		return "F64"
	default:
		return "unknown"
	}
}

// ChannelRole names the logical role of one channel in a Layout.
type ChannelRole int

const (
	ChannelUnspecified ChannelRole = iota
	ChannelLeft
	ChannelRight
	ChannelCenter
	ChannelLFE
	ChannelSurroundLeft
	ChannelSurroundRight
)

// Layout describes the ordered channel roles of a Buffer.
type Layout struct {
	Roles []ChannelRole
}

// Channels returns the channel count of the layout.
func (l Layout) Channels() int { return len(l.Roles) }

// Mono returns a single-channel layout.
func Mono() Layout { return Layout{Roles: []ChannelRole{ChannelUnspecified}} }

// Stereo returns a two-channel left/right layout.
func Stereo() Layout {
	return Layout{Roles: []ChannelRole{ChannelLeft, ChannelRight}}
}

// LayoutN returns an N-channel layout with unspecified roles, for hardware
// inputs/outputs that don't carry a named role.
func LayoutN(n int) Layout {
	roles := make([]ChannelRole, n)
	return Layout{Roles: roles}
}
