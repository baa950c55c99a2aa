package param

import "oscmix/internal/osc"

// Leaf binds one device register (or, for Mix, a register block) to one OSC
// path.
type Leaf struct {
	Path string
	Register uint16
	Type SemType
}

// MixRegisterRole identifies which of a Mix leaf's eight registers a raw
// register word belongs to.
type MixRegisterRole int

const (
	MixRoleLL MixRegisterRole = iota
	MixRoleLR
	MixRoleRL
	MixRoleRR
	MixRoleSummaryVolL
	MixRoleSummaryPanL
	MixRoleSummaryVolR
	MixRoleSummaryPanR
)

// MixRegisters derives the full eight-register block for a Mix leaf from
// its materialized register, which Resolve/FindByRegister always leave
// holding the L-in->L-out cross term (see mixerGroupNode in tables.go:
// the nested "mix"/"input" group offsets already sum to exactly that
// register). The other three leg registers and the four summary registers
// sit at fixed offsets from it.
func (l Leaf) MixRegisters() MixRegisters {
	base := l.Register
	return MixRegisters{
		LL: base,
		LR: base + mixOutStep,
		RL: base + mixInStep,
		RR: base + mixOutStep + mixInStep,
		SummaryVolL: base + mixSummaryOffset,
		SummaryPanL: base + mixSummaryOffset + 1,
		SummaryVolR: base + mixSummaryOffset + 2,
		SummaryPanR: base + mixSummaryOffset + 3,
	}
}

// MatchMixRegister reports which role, if any, register plays within a
// Mix leaf's eight-register block.
func (l Leaf) MatchMixRegister(register uint16) (MixRegisterRole, bool) {
	regs := l.MixRegisters()
	switch register {
	case regs.LL:
		return MixRoleLL, true
	case regs.LR:
		return MixRoleLR, true
	case regs.RL:
		return MixRoleRL, true
	case regs.RR:
		return MixRoleRR, true
	case regs.SummaryVolL:
		return MixRoleSummaryVolL, true
	case regs.SummaryPanL:
		return MixRoleSummaryPanL, true
	case regs.SummaryVolR:
		return MixRoleSummaryVolR, true
	case regs.SummaryPanR:
		return MixRoleSummaryPanR, true
	default:
		return 0, false
	}
}

// EncodeMix validates a Mix leaf's (volume_dB, pan, width) arguments and
// returns the eight (register,value) writes a stereo-linked mix write
// produces: four cross-term legs plus two summary dB/pan pairs, per
// the (fif) argument order.
func (l Leaf) EncodeMix(args []osc.Arg) ([]RegisterValue, error) {
	if l.Type.Kind != KindMix {
		return nil, newProtoErr("encodeMix: not a Mix leaf")
	}
	if len(args) < 3 {
		return nil, newProtoErr("encodeMix: expected vol,pan,width arguments")
	}
	vol, err := argToFloat(args[0])
	if err != nil {
		return nil, err
	}
	pan, err := argToInt(args[1])
	if err != nil {
		return nil, err
	}
	width, err := argToFloat(args[2])
	if err != nil {
		return nil, err
	}
	pan = clampInt(pan, -100, 100)
	if width < 0 {
		width = 0
	} else if width > 1 {
		width = 1
	}
	mw := MixWrite{VolDB: vol, Pan: pan, Width: width}
	return EncodeStereoToStereo(l.MixRegisters(), mw, mw), nil
}

// Node is one level of the static rooted ParameterTree. A Node with a
// non-nil Leaf is terminal along that path; a Node with Children is an
// intermediate segment. Count, when nonzero, makes this node repeat as an
// indexed group (e.g. "input" with Count=20 allows "/input/1".."/input/20"),
// with BaseRegister offset by (index-1)*RegisterStride for each repetition.
type Node struct {
	Name string
	Leaf *Leaf
	Children []*Node
	Count int
	RegisterStride uint16
}

// Tree is a static, declarative, rooted parameter tree for one device model.
type Tree struct {
	Model string
	Root []*Node
}
