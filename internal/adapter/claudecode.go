package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/michael-freling/agent-guardrails/internal/config"
	"github.com/michael-freling/agent-guardrails/internal/event"
)

// claudeHookNames maps the universal event taxonomy to Claude Code's hook
// event names. Variants without a native equivalent are omitted.
var claudeHookNames = map[event.Type]string{
	event.TypeSessionStart:   "SessionStart",
	event.TypePromptSubmit:   "UserPromptSubmit",
	event.TypeToolBefore:     "PreToolUse",
	event.TypeFileWrite:      "PreToolUse",
	event.TypeFileEdit:       "PreToolUse",
	event.TypeFileDelete:     "PreToolUse",
	event.TypeShellBefore:    "PreToolUse",
	event.TypeExternalBefore: "PreToolUse",
	event.TypeToolAfter:      "PostToolUse",
	event.TypeFileRead:       "PostToolUse",
	event.TypeShellAfter:     "PostToolUse",
	event.TypeExternalAfter:  "PostToolUse",
	event.TypeSessionEnd:     "Stop",
	event.TypeNotification:   "Notification",
}

// claudeCodeAdapter renders the Claude Code settings JSON hook map.
type claudeCodeAdapter struct {
	command string
}

// NewClaudeCode creates the Claude Code adapter. command is the hook
// command Claude Code should invoke, typically "guardrails check".
func NewClaudeCode(command string) Adapter {
	return &claudeCodeAdapter{command: command}
}

func (a *claudeCodeAdapter) Name() string {
	return "claude-code"
}

func (a *claudeCodeAdapter) Detect() bool {
	return toolOnPath("claude")
}

type claudeHookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

type claudeMatcher struct {
	Matcher string            `json:"matcher"`
	Hooks   []claudeHookEntry `json:"hooks"`
}

type claudeSettings struct {
	Hooks map[string][]claudeMatcher `json:"hooks"`
}

func (a *claudeCodeAdapter) Render(cfg *config.Config) (map[string][]byte, error) {
	hookEvents := make(map[string]bool)
	for _, def := range cfg.Hooks {
		if !def.Enabled() {
			continue
		}
		for _, t := range def.EventTypes() {
			if name, ok := claudeHookNames[t]; ok {
				hookEvents[name] = true
			}
		}
	}

	settings := claudeSettings{Hooks: make(map[string][]claudeMatcher)}
	for name := range hookEvents {
		settings.Hooks[name] = []claudeMatcher{
			{
				Matcher: "*",
				Hooks:   []claudeHookEntry{{Type: "command", Command: a.command}},
			},
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode Claude Code settings: %w", err)
	}
	data = append(data, '\n')

	return map[string][]byte{
		".claude/settings.json": data,
	}, nil
}
