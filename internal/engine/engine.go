// Package engine exposes the single "is this event blocked" operation over
// a resolved config.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/michael-freling/agent-guardrails/internal/chain"
	"github.com/michael-freling/agent-guardrails/internal/config"
	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// Verdict is the outcome of one policy check.
type Verdict struct {
	// Blocked indicates the triggering action must not proceed.
	Blocked bool

	// Reason explains a blocked verdict. It comes from the first blocking
	// result in execution order.
	Reason string

	// Results is the full result sequence accumulated by the chain.
	Results []hook.Result
}

// Engine runs policy checks over a resolved config. An Engine is safe for
// concurrent use: the hook list is read-only after construction and every
// check owns a fresh context.
type Engine struct {
	hooks    []hook.Definition
	settings *config.Settings
	runner   *chain.Runner
	logger   *slog.Logger
	clock    chain.Clock
	workDir  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for decision records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkDir sets the working directory recorded on every execution
// context.
func WithWorkDir(dir string) Option {
	return func(e *Engine) {
		e.workDir = dir
	}
}

// WithClock replaces the chain runner's clock, typically in tests.
func WithClock(clock chain.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an engine over a resolved config. The config must already be
// resolved: presets merged and Extends cleared.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if len(cfg.Extends) > 0 {
		return nil, fmt.Errorf("config has unresolved extends; call config.Resolve first")
	}

	e := &Engine{
		hooks:    cfg.Hooks,
		settings: cfg.Settings,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	runnerOpts := []chain.Option{chain.WithLogger(e.logger)}
	if e.clock != nil {
		runnerOpts = append(runnerOpts, chain.WithClock(e.clock))
	}
	e.runner = chain.NewRunner(runnerOpts...)
	return e, nil
}

// Check runs the hook chain for one event occurrence and reports whether
// the event is blocked.
//
// A handler error means no definitive verdict could be computed; the
// configured fail mode decides the verdict (fail-closed blocks, fail-open
// allows) and the underlying error is returned alongside it.
func (e *Engine) Check(ctx context.Context, ev *event.Event, tool hook.Identity) (*Verdict, error) {
	if ev == nil {
		return nil, fmt.Errorf("event is required")
	}

	hctx := hook.NewContext(ev, tool, e.workDir)

	registered := make([]hook.Definition, 0, len(e.hooks))
	for _, def := range e.hooks {
		if def.Handles(ev.Type) {
			registered = append(registered, def)
		}
	}

	results, err := e.runner.Run(ctx, registered, hctx, e.settings.HookTimeout())
	if err != nil {
		verdict := &Verdict{Results: results}
		if e.failMode() == config.FailClosed {
			verdict.Blocked = true
			verdict.Reason = fmt.Sprintf("hook failure (fail-closed): %v", err)
		}
		e.logger.Error("policy check failed",
			slog.String("event", string(ev.Type)),
			slog.String("execution_id", hctx.ExecutionID()),
			slog.Bool("blocked", verdict.Blocked),
			slog.Any("error", err))
		return verdict, err
	}

	verdict := &Verdict{Results: results}
	if blocked, ok := hctx.FirstBlocked(); ok {
		verdict.Blocked = true
		verdict.Reason = blocked.Reason
	}

	e.logger.Info("policy check",
		slog.String("event", string(ev.Type)),
		slog.String("tool", tool.Name),
		slog.String("execution_id", hctx.ExecutionID()),
		slog.Bool("blocked", verdict.Blocked))
	return verdict, nil
}

func (e *Engine) failMode() string {
	if e.settings == nil || e.settings.FailMode == "" {
		return config.FailOpen
	}
	return e.settings.FailMode
}
