package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/michael-freling/agent-guardrails/internal/config"
	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

func buildHook(t *testing.T, b *hook.Builder) hook.Definition {
	t.Helper()
	def, err := b.Build()
	require.NoError(t, err)
	return def
}

func blockDangerousHook(t *testing.T) hook.Definition {
	return buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypeShellBefore},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			if hctx.Event().Command == "rm -rf /" {
				return hook.Block(fmt.Sprintf("dangerous command: %s", hctx.Event().Command)), nil
			}
			return hook.Continue(), nil
		}).ID("blockDangerous").Priority(1))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil config",
			cfg:         nil,
			wantErr:     true,
			errContains: "config is required",
		},
		{
			name: "unresolved extends rejected",
			cfg: &config.Config{
				Hooks:   []hook.Definition{},
				Extends: []*config.Config{{Hooks: []hook.Definition{}}},
			},
			wantErr:     true,
			errContains: "unresolved extends",
		},
		{
			name: "resolved config accepted",
			cfg:  &config.Config{Hooks: []hook.Definition{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, eng)
		})
	}
}

func TestEngine_Check_Blocked(t *testing.T) {
	cfg := &config.Config{Hooks: []hook.Definition{blockDangerousHook(t)}}
	eng, err := New(cfg)
	require.NoError(t, err)

	verdict, err := eng.Check(context.Background(), event.NewShellBefore("rm -rf /"), hook.Identity{Name: "claude-code"})

	require.NoError(t, err)
	assert.True(t, verdict.Blocked)
	assert.Contains(t, verdict.Reason, "rm -rf /")
	require.Len(t, verdict.Results, 1)
}

func TestEngine_Check_Allowed(t *testing.T) {
	cfg := &config.Config{Hooks: []hook.Definition{blockDangerousHook(t)}}
	eng, err := New(cfg)
	require.NoError(t, err)

	verdict, err := eng.Check(context.Background(), event.NewShellBefore("ls"), hook.Identity{Name: "claude-code"})

	require.NoError(t, err)
	assert.False(t, verdict.Blocked)
	assert.Empty(t, verdict.Reason)
}

func TestEngine_Check_NilEvent(t *testing.T) {
	eng, err := New(&config.Config{Hooks: []hook.Definition{}})
	require.NoError(t, err)

	_, err = eng.Check(context.Background(), nil, hook.Identity{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "event is required")
}

// The audit hook is registered for after-events only; a shell.before check
// must never run it, even though it sits in the same config.
func TestEngine_Check_FiltersHooksByEventType(t *testing.T) {
	auditRan := false
	audit := buildHook(t, hook.New(event.PhaseAfter, []event.Type{event.TypeShellAfter},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			auditRan = true
			return hook.Observe("audit"), nil
		}).ID("auditShell").Priority(999))

	cfg := &config.Config{Hooks: []hook.Definition{blockDangerousHook(t), audit}}
	eng, err := New(cfg)
	require.NoError(t, err)

	verdict, err := eng.Check(context.Background(), event.NewShellBefore("rm -rf /"), hook.Identity{})

	require.NoError(t, err)
	assert.True(t, verdict.Blocked)
	require.Len(t, verdict.Results, 1)
	assert.False(t, auditRan, "after-phase hook must not run for a before event it is not registered for")
}

func TestEngine_Check_FirstBlockingReasonWins(t *testing.T) {
	first := buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypePromptSubmit},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			return hook.Block("first reason"), nil
		}).ID("first").Priority(1))
	// Runs only if the veto failed; guards the ordering assertion below.
	second := buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypePromptSubmit},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			return hook.Block("second reason"), nil
		}).ID("second").Priority(2))

	cfg := &config.Config{Hooks: []hook.Definition{second, first}}
	eng, err := New(cfg)
	require.NoError(t, err)

	verdict, err := eng.Check(context.Background(), event.NewPromptSubmit("drop it all"), hook.Identity{})

	require.NoError(t, err)
	assert.True(t, verdict.Blocked)
	assert.Equal(t, "first reason", verdict.Reason)
}

func TestEngine_Check_FailModes(t *testing.T) {
	crasher := func(t *testing.T) hook.Definition {
		return buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypeShellBefore},
			func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
				return hook.Outcome{}, errors.New("handler exploded")
			}).ID("crasher"))
	}

	tests := []struct {
		name        string
		failMode    string
		wantBlocked bool
	}{
		{name: "fail-open allows", failMode: config.FailOpen, wantBlocked: false},
		{name: "default is fail-open", failMode: "", wantBlocked: false},
		{name: "fail-closed blocks", failMode: config.FailClosed, wantBlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Hooks:    []hook.Definition{crasher(t)},
				Settings: &config.Settings{FailMode: tt.failMode},
			}
			eng, err := New(cfg)
			require.NoError(t, err)

			verdict, err := eng.Check(context.Background(), event.NewShellBefore("ls"), hook.Identity{})

			require.Error(t, err, "the underlying handler error always surfaces")
			assert.Contains(t, err.Error(), "handler exploded")
			require.NotNil(t, verdict)
			assert.Equal(t, tt.wantBlocked, verdict.Blocked)
			if tt.wantBlocked {
				assert.Contains(t, verdict.Reason, "fail-closed")
			}
		})
	}
}

func TestEngine_Check_HookTimeoutFromSettings(t *testing.T) {
	slow := buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypeShellBefore},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			time.Sleep(500 * time.Millisecond)
			return hook.Block("too slow to matter"), nil
		}).ID("slow"))

	cfg := &config.Config{
		Hooks:    []hook.Definition{slow},
		Settings: &config.Settings{HookTimeoutMs: 20},
	}
	eng, err := New(cfg)
	require.NoError(t, err)

	verdict, err := eng.Check(context.Background(), event.NewShellBefore("ls"), hook.Identity{})

	require.NoError(t, err)
	assert.False(t, verdict.Blocked)
	require.Len(t, verdict.Results, 1)
	assert.Contains(t, verdict.Results[0].Reason, "slow")
	assert.Contains(t, verdict.Results[0].Reason, "20ms")
}

// Concurrent checks must not share state bags or result lists.
func TestEngine_Check_ConcurrentExecutionsAreIsolated(t *testing.T) {
	recorder := buildHook(t, hook.New(event.PhaseBefore, []event.Type{event.TypePromptSubmit},
		func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
			hctx.Set("prompt", hctx.Event().Prompt)
			time.Sleep(10 * time.Millisecond)
			value, ok := hctx.Get("prompt")
			if !ok || value != hctx.Event().Prompt {
				return hook.Outcome{}, fmt.Errorf("state bag leaked across executions: got %v", value)
			}
			return hook.Observe(value), nil
		}).ID("recorder"))

	cfg := &config.Config{Hooks: []hook.Definition{recorder}}
	eng, err := New(cfg)
	require.NoError(t, err)

	var group errgroup.Group
	for _, prompt := range []string{"alpha", "beta", "gamma", "delta"} {
		prompt := prompt
		group.Go(func() error {
			verdict, err := eng.Check(context.Background(), event.NewPromptSubmit(prompt), hook.Identity{})
			if err != nil {
				return err
			}
			if len(verdict.Results) != 1 {
				return fmt.Errorf("expected 1 result, got %d", len(verdict.Results))
			}
			if verdict.Results[0].Data != prompt {
				return fmt.Errorf("result leaked across executions: got %v, want %s", verdict.Results[0].Data, prompt)
			}
			return nil
		})
	}

	require.NoError(t, group.Wait())
}
