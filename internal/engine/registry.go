package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the operations an Engine can dispatch to.
// It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*Operation

	byCategory map[Category][]*Operation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:        make(map[string]*Operation),
		byCategory: make(map[Category][]*Operation),
	}
}

// Register adds an operation. Duplicate names are rejected.
func (r *Registry) Register(op *Operation) error {
	if err := op.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("%w: %s", ErrOperationAlreadyRegistered, op.Name)
	}
	r.ops[op.Name] = op
	r.byCategory[op.Category] = append(r.byCategory[op.Category], op)
	return nil
}

// MustRegister registers an operation and panics on error.
func (r *Registry) MustRegister(op *Operation) {
	if err := r.Register(op); err != nil {
		panic(fmt.Sprintf("failed to register operation %s: %v", op.Name, err))
	}
}

// Get returns an operation by name, or nil if not found.
func (r *Registry) Get(name string) *Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ops[name]
	return ok
}

// ByCategory returns the operations in a category sorted by name.
func (r *Registry) ByCategory(category Category) []*Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]*Operation, len(r.byCategory[category]))
	copy(ops, r.byCategory[category])
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered operations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}
