package param

import "sync"

// Registry holds one ParameterTree per supported device model, letting the
// control plane bind to whichever interface the MIDI port enumeration
// reports (the multi-model support called out in the expanded device
// scope: Fireface UCX II, UFX II, 802 all share this register-map family
// with different channel counts).
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Tree
}

func NewRegistry() *Registry {
	r := &Registry{models: map[string]*Tree{}}
	r.Register(NewFirefaceUCXII())
	r.Register(newFirefaceUFXII())
	r.Register(newFireface802())
	return r
}

func (r *Registry) Register(t *Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[t.Model] = t
}

func (r *Registry) Lookup(model string) (*Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.models[model]
	return t, ok
}

func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// newFirefaceUFXII and newFireface802 reuse the UCX II layout scaled to
// their larger channel counts; the device map's per-channel register
// stride is identical across the Fireface family, only channel counts
// differ.
func newFirefaceUFXII() *Tree {
	return &Tree{
		Model: "Fireface UFX II",
		Root: []*Node{
			systemNode(),
			clockNode(),
			inputGroupNode(30),
			outputGroupNode(30),
			mixerGroupNode(30, 30),
			durecNode(),
		},
	}
}

func newFireface802() *Tree {
	return &Tree{
		Model: "Fireface 802",
		Root: []*Node{
			systemNode(),
			clockNode(),
			inputGroupNode(12),
			outputGroupNode(12),
			mixerGroupNode(12, 12),
			durecNode(),
		},
	}
}
