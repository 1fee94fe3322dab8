// Package chain runs a priority-ordered, filterable, timeout-bounded,
// blocking-aware sequence of hooks over a shared execution context.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// DefaultTimeout bounds a single handler invocation when the caller does
// not configure one.
const DefaultTimeout = 5 * time.Second

// errHookTimeout marks a handler that did not return before its timer.
var errHookTimeout = errors.New("hook timed out")

// Runner executes hook chains. A Runner is stateless apart from its clock
// and logger and is safe for concurrent use.
type Runner struct {
	clock  Clock
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the runner's clock, typically with a fake in tests.
func WithClock(clock Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithLogger sets the logger used for per-hook debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a chain runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		clock:  NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the given hooks against hctx and returns the accumulated
// result sequence.
//
// Hooks are stable-sorted by priority ascending, so equal-priority hooks
// keep their original relative order. Disabled hooks and hooks whose
// filter rejects the event are skipped. Once any result has blocked the
// action, the next before-phase candidate stops the chain entirely: a
// block from an earlier before-hook vetoes all later gatekeeping.
//
// Each handler races a timer of timeout. A handler that loses the race is
// recorded as a non-blocking diagnostic result and the chain continues;
// the handler goroutine itself is not interrupted, so the timeout is
// logical only. A handler error aborts the chain and propagates to the
// caller; it is a fatal condition, not a policy decision.
func (r *Runner) Run(ctx context.Context, defs []hook.Definition, hctx *hook.Context, timeout time.Duration) ([]hook.Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if len(defs) == 0 {
		return hctx.Results(), nil
	}

	sorted := make([]hook.Definition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	for _, def := range sorted {
		if !def.Enabled() {
			continue
		}
		if !def.Matches(hctx.Event()) {
			continue
		}
		if def.Phase() == event.PhaseBefore && hctx.Blocked() {
			break
		}

		outcome, err := r.invoke(ctx, def, hctx, timeout)
		if err != nil {
			if errors.Is(err, errHookTimeout) {
				hctx.AddResult(hook.Result{
					HookID: def.ID(),
					Reason: fmt.Sprintf("hook %s timed out after %dms", def.ID(), timeout.Milliseconds()),
				})
				r.logger.Warn("hook timed out",
					slog.String("hook", def.ID()),
					slog.Duration("timeout", timeout))
				continue
			}
			return hctx.Results(), fmt.Errorf("hook %s: %w", def.ID(), err)
		}

		switch outcome.Kind {
		case hook.OutcomeContinue:
		case hook.OutcomeBlock:
			hctx.AddResult(hook.Result{
				HookID:  def.ID(),
				Blocked: true,
				Reason:  outcome.Reason,
			})
			r.logger.Debug("hook blocked event",
				slog.String("hook", def.ID()),
				slog.String("reason", outcome.Reason))
		case hook.OutcomeObserve:
			hctx.AddResult(hook.Result{
				HookID: def.ID(),
				Data:   outcome.Data,
			})
		case hook.OutcomeHalt:
			return hctx.Results(), nil
		default:
			return hctx.Results(), fmt.Errorf("hook %s returned unknown outcome kind %d", def.ID(), outcome.Kind)
		}
	}

	return hctx.Results(), nil
}

// invoke runs one handler, racing it against a timer. The handler runs in
// its own goroutine; if the timer fires first the goroutine keeps running
// but its eventual outcome is discarded.
func (r *Runner) invoke(ctx context.Context, def hook.Definition, hctx *hook.Context, timeout time.Duration) (hook.Outcome, error) {
	type handlerReturn struct {
		outcome hook.Outcome
		err     error
	}

	done := make(chan handlerReturn, 1)
	go func() {
		outcome, err := def.Handler()(ctx, hctx)
		done <- handlerReturn{outcome: outcome, err: err}
	}()

	timer := r.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ret := <-done:
		return ret.outcome, ret.err
	case <-timer.C():
		return hook.Outcome{}, errHookTimeout
	}
}
