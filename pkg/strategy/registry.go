package strategy

import (
	"fmt"
	"sort"
)

// Factory builds a Strategy from a parameter map.
type Factory func(params map[string]interface{}) (Strategy, error)

// Registry holds named strategy factories for lookup and enumeration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Build looks up name and constructs a strategy with params.
func (r *Registry) Build(name string, params map[string]interface{}) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, r.List())
	}
	s, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy %s: %w", name, err)
	}
	return s, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
