package hook

import (
	"fmt"
	"sync/atomic"

	"github.com/michael-freling/agent-guardrails/internal/event"
)

// hookCounter distinguishes derived ids for the lifetime of the process.
var hookCounter atomic.Int64

// Builder constructs an immutable Definition. Create one with New, chain
// the optional setters, and finish with Build.
type Builder struct {
	def Definition
}

// New starts building a hook for the given phase, event types, and handler.
func New(phase event.Phase, types []event.Type, handler Handler) *Builder {
	registered := make([]event.Type, len(types))
	copy(registered, types)

	return &Builder{
		def: Definition{
			types:    registered,
			phase:    phase,
			handler:  handler,
			priority: DefaultPriority,
			enabled:  true,
		},
	}
}

// ID sets the unique hook identifier.
func (b *Builder) ID(id string) *Builder {
	b.def.id = id
	return b
}

// Name sets the display name.
func (b *Builder) Name(name string) *Builder {
	b.def.name = name
	return b
}

// Description sets the human-readable description.
func (b *Builder) Description(description string) *Builder {
	b.def.description = description
	return b
}

// Priority sets the execution priority; lower runs earlier.
func (b *Builder) Priority(priority int) *Builder {
	b.def.priority = priority
	return b
}

// Filter sets a predicate restricting which event occurrences the hook runs for.
func (b *Builder) Filter(filter Filter) *Builder {
	b.def.filter = filter
	return b
}

// Enabled sets whether the hook participates in chains.
func (b *Builder) Enabled(enabled bool) *Builder {
	b.def.enabled = enabled
	return b
}

// Build validates the accumulated definition and returns it. Missing id and
// name are derived from the first event type plus a process-wide counter,
// guaranteeing uniqueness for the lifetime of the process.
func (b *Builder) Build() (Definition, error) {
	def := b.def

	if def.handler == nil {
		return Definition{}, fmt.Errorf("hook handler is required")
	}
	if len(def.types) == 0 {
		return Definition{}, fmt.Errorf("hook requires at least one event type")
	}
	if def.phase != event.PhaseBefore && def.phase != event.PhaseAfter {
		return Definition{}, fmt.Errorf("invalid hook phase %q", def.phase)
	}
	for _, t := range def.types {
		if !t.Valid() {
			return Definition{}, fmt.Errorf("unknown event type %q", t)
		}
		if t.Phase() != def.phase {
			return Definition{}, fmt.Errorf("event type %q is a %s event, hook phase is %s", t, t.Phase(), def.phase)
		}
	}

	if def.id == "" {
		def.id = fmt.Sprintf("%s-hook-%d", def.types[0], hookCounter.Add(1))
	}
	if def.name == "" {
		def.name = def.id
	}

	return def, nil
}
