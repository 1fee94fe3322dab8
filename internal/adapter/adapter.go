// Package adapter translates a resolved hook configuration into each
// tool's native config format. Adapters are plain values implementing one
// capability interface and live in a registry constructed explicitly at
// startup; nothing registers itself at import time.
package adapter

import (
	"os/exec"

	"github.com/michael-freling/agent-guardrails/internal/config"
)

// Adapter renders a resolved config into one tool's native format.
type Adapter interface {
	// Name returns the adapter's unique name.
	Name() string

	// Detect reports whether the target tool appears to be installed.
	Detect() bool

	// Render returns the native config files as relative path -> content.
	Render(cfg *config.Config) (map[string][]byte, error)
}

// Registry holds the adapters available to a process.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry over the given adapters, kept in order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Get returns the adapter with the given name.
func (r *Registry) Get(name string) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Adapter {
	adapters := make([]Adapter, len(r.adapters))
	copy(adapters, r.adapters)
	return adapters
}

// Detected returns the adapters whose target tool is installed.
func (r *Registry) Detected() []Adapter {
	detected := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		if a.Detect() {
			detected = append(detected, a)
		}
	}
	return detected
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// toolOnPath reports whether the named binary is on PATH.
func toolOnPath(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}
