package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// destructiveSQLKeywords are matched case-insensitively against prompts
// and shell commands. Natural-language intent is case-insensitive, unlike
// the literal credential prefixes in SecretScan.
var destructiveSQLKeywords = []string{
	"DROP TABLE",
	"DROP DATABASE",
	"TRUNCATE TABLE",
}

// NewSQLGuard builds a before-hook that blocks prompts and shell commands
// containing destructive SQL. A DELETE FROM without a WHERE clause is also
// blocked.
func NewSQLGuard() (hook.Definition, error) {
	handler := func(ctx context.Context, hctx *hook.Context) (hook.Outcome, error) {
		ev := hctx.Event()
		text := ev.Prompt
		if ev.Type == event.TypeShellBefore {
			text = ev.Command
		}
		if text == "" {
			return hook.Continue(), nil
		}

		upper := strings.ToUpper(text)
		for _, keyword := range destructiveSQLKeywords {
			if strings.Contains(upper, keyword) {
				return hook.Block(fmt.Sprintf("destructive SQL detected: %s", keyword)), nil
			}
		}
		if strings.Contains(upper, "DELETE FROM") && !strings.Contains(upper, "WHERE") {
			return hook.Block("destructive SQL detected: DELETE FROM without a WHERE clause"), nil
		}
		return hook.Continue(), nil
	}

	return hook.New(event.PhaseBefore, []event.Type{event.TypePromptSubmit, event.TypeShellBefore}, handler).
		ID("sql-guard").
		Name("Destructive SQL guard").
		Description("Blocks prompts and commands containing destructive SQL statements").
		Priority(10).
		Build()
}
