package policy

import (
	"fmt"

	"github.com/michael-freling/agent-guardrails/internal/config"
	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// Built-in policy names usable in config files.
const (
	PolicyShellGuard = "shell-guard"
	PolicySQLGuard   = "sql-guard"
	PolicySecretScan = "secret-scan"
	PolicyAuditLog   = "audit-log"
)

// RegisterBuiltin registers every built-in policy on reg. The audit log
// policy writes to auditPath.
func RegisterBuiltin(reg *config.Registry, auditPath string) error {
	builtins := []struct {
		name    string
		factory config.Factory
	}{
		{name: PolicyShellGuard, factory: func() (hook.Definition, error) { return NewShellGuard() }},
		{name: PolicySQLGuard, factory: NewSQLGuard},
		{name: PolicySecretScan, factory: NewSecretScan},
		{name: PolicyAuditLog, factory: func() (hook.Definition, error) { return NewAuditLog(NewFileSink(auditPath)) }},
	}

	for _, b := range builtins {
		if err := reg.Register(b.name, b.factory); err != nil {
			return fmt.Errorf("failed to register built-in policies: %w", err)
		}
	}
	return nil
}
