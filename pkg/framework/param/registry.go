package param

import (
	"sync"
)

// Registry holds the parameter set. Registration happens at construction
// time; afterwards lookups are read-locked only and individual values
// are atomic, so block-start snapshots never contend with writers.
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
	}
}

// Add registers parameters, skipping duplicate IDs.
func (r *Registry) Add(params ...*Parameter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			continue
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}
}

// Get retrieves a parameter by ID, or nil.
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.params[id]
}

// Plain returns a parameter's plain value, or 0 for unknown IDs.
func (r *Registry) Plain(id uint32) float64 {
	if p := r.Get(id); p != nil {
		return p.PlainValue()
	}
	return 0
}

// SetPlain sets a parameter's plain value; unknown IDs are ignored.
func (r *Registry) SetPlain(id uint32, plain float64) {
	if p := r.Get(id); p != nil {
		p.SetPlainValue(plain)
	}
}

// Count returns the number of registered parameters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns the parameters in registration order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}
	return result
}
