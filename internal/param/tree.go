package param

import (
	"fmt"
	"strings"

	"oscmix/internal/osc"
)

// Resolve walks path, consuming indexed groups along the way, and returns a
// copy of the matching Leaf with Register already offset and Path expanded
// for any group indices traversed -> (leaf, register)`).
func (t *Tree) Resolve(path string) (Leaf, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return Leaf{}, newProtoErr("resolve: empty path")
	}
	leaf, ok := resolve(t.Root, segs, 0, nil)
	if !ok {
		return Leaf{}, newProtoErr("resolve: no leaf for path " + path)
	}
	return leaf, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// resolve walks nodes against segs, accumulating a register offset and the
// sequence of 1-based group indices traversed so a leaf's Path template
// (e.g. "/input/%d/gain") can be expanded on the way out.
func resolve(nodes []*Node, segs []string, offset uint16, indices []int) (Leaf, bool) {
	if len(segs) == 0 {
		return Leaf{}, false
	}
	for _, n := range nodes {
		if n.Count > 0 {
			if len(segs) < 2 || segs[0] != n.Name {
				continue
			}
			idx, ok := parseIndex(segs[1])
			if !ok || idx < 1 || idx > n.Count {
				continue
			}
			childOffset := offset + uint16(idx-1)*n.RegisterStride
			childIndices := append(append([]int{}, indices...), idx)
			rest := segs[2:]
			if n.Leaf != nil && len(rest) == 0 {
				return materialize(*n.Leaf, childOffset, childIndices), true
			}
			if leaf, ok := resolve(n.Children, rest, childOffset, childIndices); ok {
				return leaf, true
			}
			continue
		}
		if segs[0] != n.Name {
			continue
		}
		rest := segs[1:]
		if n.Leaf != nil && len(rest) == 0 {
			return materialize(*n.Leaf, offset, indices), true
		}
		if leaf, ok := resolve(n.Children, rest, offset, indices); ok {
			return leaf, true
		}
	}
	return Leaf{}, false
}

func materialize(l Leaf, offset uint16, indices []int) Leaf {
	l.Register += offset
	if strings.Contains(l.Path, "%d") && len(indices) > 0 {
		args := make([]any, len(indices))
		for i, idx := range indices {
			args[i] = idx
		}
		l.Path = fmt.Sprintf(l.Path, args...)
	}
	return l
}

// Encode validates args against leaf's semantic type and produces the
// 16-bit device value, Mix leaves use EncodeMix instead, since a
// Mix write spans multiple registers and multiple arguments.
func (l Leaf) Encode(args []osc.Arg) (register uint16, value int, err error) {
	if l.Type.Kind == KindMix {
		return 0, 0, newProtoErr("encode: Mix leaf requires EncodeMix")
	}
	v, err := l.Type.encodeScalar(args)
	if err != nil {
		return 0, 0, err
	}
	return l.Register, v, nil
}

// Decode produces the OSC messages that correspond to a freshly observed
// raw register value, outbound codec. Mix leaves span multiple registers
// and so cannot be decoded from a single raw value in isolation; the
// DeviceMirror reassembles them from MatchMixRegister/DecodeMixRegisters
// instead and never calls Decode for a Mix leaf.
func (l Leaf) Decode(raw int) []osc.Message {
	return l.Type.decodeScalar(l.Path, raw)
}

// FindByRegister performs the reverse lookup the DeviceMirror needs: given
// a register word freshly decoded off the wire, which leaf (if any) owns
// it, with its Path fully expanded. Groups are expanded, so this is
// O(leaves) per lookup; tables are small enough (hundreds of leaves) for
// this to be cheap relative to a SysEx block of 32-bit words.
func (t *Tree) FindByRegister(register uint16) (Leaf, bool) {
	return findByRegister(t.Root, register, 0, nil)
}

func findByRegister(nodes []*Node, register, offset uint16, indices []int) (Leaf, bool) {
	for _, n := range nodes {
		if n.Count > 0 {
			for idx := 1; idx <= n.Count; idx++ {
				childOffset := offset + uint16(idx-1)*n.RegisterStride
				childIndices := append(append([]int{}, indices...), idx)
				if n.Leaf != nil {
					if cand := materialize(*n.Leaf, childOffset, childIndices); leafOwnsRegister(cand, register) {
						return cand, true
					}
				}
				if leaf, ok := findByRegister(n.Children, register, childOffset, childIndices); ok {
					return leaf, true
				}
			}
			continue
		}
		if n.Leaf != nil {
			if cand := materialize(*n.Leaf, offset, indices); leafOwnsRegister(cand, register) {
				return cand, true
			}
		}
		if leaf, ok := findByRegister(n.Children, register, offset, indices); ok {
			return leaf, true
		}
	}
	return Leaf{}, false
}

// leafOwnsRegister reports whether register belongs to leaf: either its
// own register directly, or, for a Mix leaf, any of the eight registers
// in its cross-term/summary block.
func leafOwnsRegister(leaf Leaf, register uint16) bool {
	if leaf.Register == register {
		return true
	}
	if leaf.Type.Kind == KindMix {
		_, ok := leaf.MatchMixRegister(register)
		return ok
	}
	return false
}
