package hook

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/michael-freling/agent-guardrails/internal/event"
)

// Identity names the tool whose action triggered the event.
type Identity struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Result is one entry in a chain's accumulated result sequence.
type Result struct {
	// HookID identifies the hook that produced this result, when known.
	HookID string `json:"hook_id,omitempty"`

	// Blocked indicates the triggering action must not proceed.
	Blocked bool `json:"blocked"`

	// Reason explains a blocking or diagnostic result.
	Reason string `json:"reason,omitempty"`

	// Mutated carries a proposed mutation of the triggering event. A
	// handler proposes one by appending a Result through AddResult; an
	// Outcome never carries a mutation. The proposal does not replace the
	// event for later hooks in the chain; acting on it is the caller's
	// decision.
	Mutated *event.Event `json:"mutated,omitempty"`

	// Data carries an arbitrary observational payload.
	Data any `json:"data,omitempty"`
}

// Context is the shared state of one chain execution. It is created fresh
// per event occurrence, mutated in place by every hook in the chain, and
// discarded once its results have been consumed.
//
// The state bag and result list are guarded by a mutex: a handler that
// logically timed out may still be running and must not race the chain.
type Context struct {
	evt         *event.Event
	tool        Identity
	workDir     string
	executionID string
	startedAt   time.Time

	mu      sync.Mutex
	state   map[string]any
	results []Result
}

// NewContext creates the execution context for one event occurrence.
func NewContext(ev *event.Event, tool Identity, workDir string) *Context {
	return &Context{
		evt:         ev,
		tool:        tool,
		workDir:     workDir,
		executionID: uuid.NewString(),
		startedAt:   time.Now(),
		state:       make(map[string]any),
	}
}

// Event returns the triggering event.
func (c *Context) Event() *event.Event { return c.evt }

// Tool returns the identity of the tool that emitted the event.
func (c *Context) Tool() Identity { return c.tool }

// WorkDir returns the working directory of the triggering action.
func (c *Context) WorkDir() string { return c.workDir }

// ExecutionID returns the unique id of this chain execution.
func (c *Context) ExecutionID() string { return c.executionID }

// StartedAt returns the time the context was created.
func (c *Context) StartedAt() time.Time { return c.startedAt }

// Set stores a value in the state bag for later hooks in the same chain.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[key] = value
}

// Get reads a value from the state bag.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.state[key]
	return value, ok
}

// AddResult appends one result to the accumulated sequence. Append order
// is preserved.
func (c *Context) AddResult(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of the accumulated result sequence in append
// order. The copy is never nil.
func (c *Context) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]Result, len(c.results))
	copy(results, c.results)
	return results
}

// Blocked reports whether any accumulated result has blocked the action.
func (c *Context) Blocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, result := range c.results {
		if result.Blocked {
			return true
		}
	}
	return false
}

// FirstBlocked returns the earliest blocking result in execution order.
func (c *Context) FirstBlocked() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, result := range c.results {
		if result.Blocked {
			return result, true
		}
	}
	return Result{}, false
}
