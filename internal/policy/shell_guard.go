// Package policy provides the built-in reference hooks: pattern-based
// blockers for shell commands, destructive SQL, and credential literals,
// plus an audit-only observer for after-events.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// ShellPattern is one entry in an ordered blocklist. The first matching
// pattern wins and appears in the emitted reason.
type ShellPattern struct {
	Pattern string
	Reason  string
}

// DefaultShellPatterns returns the built-in blocklist for destructive
// shell commands. Order matters: earlier entries take precedence in the
// emitted reason.
func DefaultShellPatterns() []ShellPattern {
	return []ShellPattern{
		{Pattern: "rm -rf /", Reason: "recursively deletes from the filesystem root"},
		{Pattern: "rm -rf ~", Reason: "recursively deletes the home directory"},
		{Pattern: "mkfs", Reason: "formats a filesystem"},
		{Pattern: "dd if=", Reason: "raw disk writes can destroy data"},
		{Pattern: ":(){ :|:& };:", Reason: "fork bomb"},
		{Pattern: "chmod -R 777 /", Reason: "makes the entire filesystem world-writable"},
		{Pattern: "git push --force origin main", Reason: "force-pushes over the main branch"},
	}
}

// NewShellGuard builds a before-hook that blocks shell commands matching
// an ordered pattern list. With no patterns, the defaults are used.
// Matching is case-sensitive over a whitespace-normalized command with
// quoted strings stripped, so `echo "rm -rf /"` is not a match.
func NewShellGuard(patterns ...ShellPattern) (hook.Definition, error) {
	if len(patterns) == 0 {
		patterns = DefaultShellPatterns()
	}

	handler := func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
		command := commandFrom(hctx.Event())
		if command == "" {
			return hook.Continue(), nil
		}

		normalized := normalizeCommand(command)
		for _, p := range patterns {
			if strings.Contains(normalized, p.Pattern) {
				return hook.Block(fmt.Sprintf("command matches blocked pattern %q: %s", p.Pattern, p.Reason)), nil
			}
		}
		return hook.Continue(), nil
	}

	return hook.New(event.PhaseBefore, []event.Type{event.TypeShellBefore, event.TypeToolBefore}, handler).
		ID("shell-guard").
		Name("Shell command guard").
		Description("Blocks destructive shell commands by ordered pattern list").
		Priority(1).
		Build()
}

// commandFrom extracts the shell command from the event variants this
// package guards. For tool.before events only shell-like tools carry one.
func commandFrom(ev *event.Event) string {
	switch ev.Type {
	case event.TypeShellBefore, event.TypeShellAfter:
		return ev.Command
	case event.TypeToolBefore, event.TypeToolAfter:
		if command, ok := ev.ToolInput["command"].(string); ok {
			return command
		}
	}
	return ""
}
