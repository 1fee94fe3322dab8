// Package hook defines the hook contract: immutable hook definitions, the
// per-execution context shared by a chain, and the explicit outcome type
// every handler returns.
package hook

import (
	"context"

	"github.com/michael-freling/agent-guardrails/internal/event"
)

// DefaultPriority is assigned to hooks that do not set one. Lower
// priorities run earlier.
const DefaultPriority = 100

// Handler is the function invoked for a matching event. Handlers receive
// the full event union through the context; a handler registered for event
// type X must only read fields belonging to X's shape.
type Handler func(ctx context.Context, hctx *Context) (Outcome, error)

// Filter decides whether a hook applies to a specific event occurrence.
type Filter func(ev *event.Event) bool

// OutcomeKind enumerates the possible handler verdicts.
type OutcomeKind int

const (
	// OutcomeContinue lets the chain proceed to the next hook.
	OutcomeContinue OutcomeKind = iota
	// OutcomeBlock records a blocking result and vetoes later before-hooks.
	OutcomeBlock
	// OutcomeObserve records an observational result and continues.
	OutcomeObserve
	// OutcomeHalt stops the chain without recording a result.
	OutcomeHalt
)

// Outcome is the verdict a handler returns. The chain switches on Kind
// exhaustively, so a handler cannot forget to state whether the chain
// should continue.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Data   any
}

// Continue lets the chain proceed.
func Continue() Outcome {
	return Outcome{Kind: OutcomeContinue}
}

// Block stops the triggering action with the given reason.
func Block(reason string) Outcome {
	return Outcome{Kind: OutcomeBlock, Reason: reason}
}

// Observe attaches structured data to the execution without affecting it.
func Observe(data any) Outcome {
	return Outcome{Kind: OutcomeObserve, Data: data}
}

// Halt stops the chain silently.
func Halt() Outcome {
	return Outcome{Kind: OutcomeHalt}
}

// Definition is the immutable metadata and handler for one hook. Build one
// with New; the zero value is not usable.
type Definition struct {
	id          string
	name        string
	description string
	types       []event.Type
	phase       event.Phase
	handler     Handler
	filter      Filter
	priority    int
	enabled     bool
}

// ID returns the unique hook identifier.
func (d Definition) ID() string { return d.id }

// Name returns the display name.
func (d Definition) Name() string { return d.name }

// Description returns the human-readable description, if any.
func (d Definition) Description() string { return d.description }

// EventTypes returns a copy of the event types this hook is registered for.
func (d Definition) EventTypes() []event.Type {
	types := make([]event.Type, len(d.types))
	copy(types, d.types)
	return types
}

// Phase returns the hook's phase class.
func (d Definition) Phase() event.Phase { return d.phase }

// Handler returns the handler function.
func (d Definition) Handler() Handler { return d.handler }

// Priority returns the execution priority; lower runs earlier.
func (d Definition) Priority() int { return d.priority }

// Enabled reports whether the hook participates in chains at all.
func (d Definition) Enabled() bool { return d.enabled }

// Handles reports whether the hook is registered for events of type t.
func (d Definition) Handles(t event.Type) bool {
	for _, registered := range d.types {
		if registered == t {
			return true
		}
	}
	return false
}

// Matches reports whether the hook's filter accepts ev. A hook without a
// filter accepts every event it is registered for.
func (d Definition) Matches(ev *event.Event) bool {
	if d.filter == nil {
		return true
	}
	return d.filter(ev)
}

// WithPriority returns a copy of d with a different priority. The receiver
// is unchanged.
func (d Definition) WithPriority(priority int) Definition {
	d.priority = priority
	return d
}

// WithEnabled returns a copy of d with the enabled flag set. The receiver
// is unchanged.
func (d Definition) WithEnabled(enabled bool) Definition {
	d.enabled = enabled
	return d
}
