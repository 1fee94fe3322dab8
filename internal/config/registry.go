package config

import (
	"fmt"

	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// Factory builds one hook definition for a named policy.
type Factory func() (hook.Definition, error)

// Registry maps policy names to hook factories. A Registry is constructed
// explicitly at startup and passed by reference to whatever loads configs;
// there is no process-wide registry and no import-side-effect registration.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty policy registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a named policy factory. Registering the same name twice is
// an error.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("policy name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("policy %s: factory cannot be nil", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("policy %s is already registered", name)
	}

	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	factory, ok := r.factories[name]
	return factory, ok
}

// Names returns every registered policy name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
