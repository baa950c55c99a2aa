package mirror

import (
	"oscmix/internal/osc"
	"oscmix/internal/param"
)

// mixCell buffers the four cross-term legs for one Mix path
// ("/mix/<out>/input/<in>") as they arrive off the wire in any order,
// interleaved with unrelated traffic, and reassembles them into an OSC
// notification once all four are known.
type mixCell struct {
	ll, lr, rl, rr int
	haveLL, haveLR, haveRL, haveRR bool
}

func (c *mixCell) complete() bool {
	return c.haveLL && c.haveLR && c.haveRL && c.haveRR
}

// mixState is the per-Mirror table of in-progress Mix cells, keyed by the
// leaf's expanded path.
type mixState struct {
	cells map[string]*mixCell
}

// updateFromRegister folds one freshly decoded register word into the Mix
// cell leaf owns, returning the cell's notification once all four legs are
// known. Summary registers are derived, not stored, so they never
// contribute a notification of their own.
func (s *mixState) updateFromRegister(leaf param.Leaf, register uint16, raw int) []osc.Message {
	role, ok := leaf.MatchMixRegister(register)
	if !ok {
		return nil
	}
	if s.cells == nil {
		s.cells = make(map[string]*mixCell)
	}
	c, ok := s.cells[leaf.Path]
	if !ok {
		c = &mixCell{}
		s.cells[leaf.Path] = c
	}
	switch role {
	case param.MixRoleLL:
		c.ll, c.haveLL = raw, true
	case param.MixRoleLR:
		c.lr, c.haveLR = raw, true
	case param.MixRoleRL:
		c.rl, c.haveRL = raw, true
	case param.MixRoleRR:
		c.rr, c.haveRR = raw, true
	default:
		return nil
	}
	if !c.complete() {
		return nil
	}
	left, _ := param.DecodeMixRegisters(c.ll, c.lr, c.rl, c.rr)
	return []osc.Message{{
		Address: leaf.Path,
		Args: []osc.Arg{
			osc.Float32(float32(left.VolDB)),
			osc.Int32(int32(left.Pan)),
			osc.Float32(float32(left.Width)),
		},
	}}
}
