// Package mirror implements the device mirror: a flat table of the
// last known value per parameter, a clean/dirty flag per entry, the
// refresh/reconciliation protocol, and DURec file-slot and Mix cross-term
// reassembly.
package mirror

import (
	"sync"

	"oscmix/internal/osc"
	"oscmix/internal/param"
)

// entry is one logical parameter's last known state.
type entry struct {
	path string
	args []osc.Arg
	clean bool
}

// Mirror is the sole authority for "current value" queries.
type Mirror struct {
	mu sync.Mutex
	tree *param.Tree
	values map[string]*entry
	refreshing bool
	durec durecState
	mix mixState
}

func New(tree *param.Tree) *Mirror {
	return &Mirror{
		tree: tree,
		values: make(map[string]*entry),
	}
}

// Refreshing reports whether a refresh cycle is in progress.
func (m *Mirror) Refreshing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshing
}

// BeginRefresh marks every known entry stale and enters the refreshing
// state, in which diff-based suppression is disabled.
func (m *Mirror) BeginRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshing = true
	for _, e := range m.values {
		e.clean = false
	}
}

// EndRefresh clears the refreshing flag once the terminator register has
// arrived.
func (m *Mirror) EndRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshing = false
}

// Apply processes one freshly decoded register word: it resolves the
// owning leaf, decodes it to zero or more OSC messages, and returns those
// that represent a genuine change (or, during refresh, every decoded
// message regardless of change). Unmatched registers yield (nil, false) —
// the caller is responsible for debug-only logging.
func (m *Mirror) Apply(register uint16, raw int) ([]osc.Message, bool) {
	leaf, ok := m.tree.FindByRegister(register)
	if !ok {
		if durec, handled := m.applyDurec(register, raw); handled {
			return durec, true
		}
		return nil, false
	}

	var msgs []osc.Message
	if leaf.Type.Kind == param.KindMix {
		m.mu.Lock()
		msgs = m.mix.updateFromRegister(leaf, register, raw)
		m.mu.Unlock()
	} else {
		msgs = leaf.Decode(raw)
	}
	if len(msgs) == 0 {
		return nil, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []osc.Message
	for _, msg := range msgs {
		e, exists := m.values[msg.Address]
		changed := !exists || !argsEqual(e.args, msg.Args)
		if !exists {
			e = &entry{path: msg.Address}
			m.values[msg.Address] = e
		}
		if changed {
			e.args = msg.Args
		}
		e.clean = true
		if changed {
			m.durec.updateFromMessage(msg)
		}
		if changed || m.refreshing {
			out = append(out, msg)
		}
	}
	return out, true
}

// Get returns the last known OSC arguments for path, if any.
func (m *Mirror) Get(path string) ([]osc.Arg, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.values[path]
	if !ok {
		return nil, false
	}
	return append([]osc.Arg{}, e.args...), true
}

// Snapshot returns every currently known (path, args) pair, for /dump and
// /dump/save.
func (m *Mirror) Snapshot() map[string][]osc.Arg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]osc.Arg, len(m.values))
	for path, e := range m.values {
		out[path] = append([]osc.Arg{}, e.args...)
	}
	return out
}

func argsEqual(a, b []osc.Arg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Tag != b[i].Tag || a[i].Int != b[i].Int || a[i].Float != b[i].Float ||
			a[i].Str != b[i].Str || string(a[i].Blob) != string(b[i].Blob) {
			return false
		}
	}
	return true
}
