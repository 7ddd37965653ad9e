package render

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the renderers a session can target. Names are kept in
// registration order; the first one is the default until SetDefault moves it.
type Registry struct {
	mu        sync.RWMutex
	renderers []Renderer
	def       int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{def: -1}
}

func (r *Registry) index(name string) int {
	return slices.IndexFunc(r.renderers, func(candidate Renderer) bool {
		return candidate.Name() == name
	})
}

// Register adds renderer under its Name. Names are unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(name) >= 0 {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers = append(r.renderers, renderer)
	if r.def < 0 {
		r.def = 0
	}
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// SetDefault makes name the renderer used when a caller names none.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("render: renderer %q not found", name)
	}
	r.def = i
	return nil
}

// Default returns the default renderer.
func (r *Registry) Default() (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def < 0 {
		return nil, fmt.Errorf("render: no renderer registered")
	}
	return r.renderers[r.def], nil
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(name)
	if i < 0 {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return r.renderers[i], nil
}

// Resolve is Get, falling back to Default for an empty name.
func (r *Registry) Resolve(name string) (Renderer, error) {
	if name == "" {
		return r.Default()
	}
	return r.Get(name)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, len(r.renderers))
	for i, renderer := range r.renderers {
		names[i] = renderer.Name()
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index(name) >= 0
}
