// Package config models the resolved hook configuration: an ordered hook
// list, optional execution settings, and optional preset configs merged
// via extends.
package config

import (
	"fmt"
	"time"

	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// Fail modes applied by the caller when no definitive verdict could be
// computed.
const (
	FailOpen   = "open"
	FailClosed = "closed"
)

// DefaultHookTimeoutMs bounds a single handler invocation when settings do
// not say otherwise.
const DefaultHookTimeoutMs = 5000

// Settings holds optional execution settings. Fields left at their zero
// value fall back to defaults at the point of use.
type Settings struct {
	// HookTimeoutMs bounds one handler invocation, in milliseconds.
	HookTimeoutMs int `yaml:"hookTimeout" env:"GUARDRAILS_HOOK_TIMEOUT"`

	// FailMode is applied when a handler crashes: "open" allows the
	// action, "closed" blocks it.
	FailMode string `yaml:"failMode" env:"GUARDRAILS_FAIL_MODE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" env:"GUARDRAILS_LOG_LEVEL"`
}

// HookTimeout returns the per-hook timeout as a duration, applying the
// default when unset.
func (s *Settings) HookTimeout() time.Duration {
	if s == nil || s.HookTimeoutMs <= 0 {
		return DefaultHookTimeoutMs * time.Millisecond
	}
	return time.Duration(s.HookTimeoutMs) * time.Millisecond
}

// Config is an ordered hook list with optional settings and presets.
type Config struct {
	// Hooks is the ordered hook list. A nil list is a structural error; an
	// empty list is a valid config with no hooks.
	Hooks []hook.Definition

	// Settings are optional execution settings.
	Settings *Settings

	// Extends lists preset configs whose hooks are merged ahead of Hooks.
	// Resolve flattens and clears this field; it must never be set on a
	// resolved config.
	Extends []*Config
}

// ValidationError reports a structurally invalid config.
type ValidationError struct {
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Cause)
}

// Resolve validates cfg and flattens its presets into a single ordered
// hook list: every preset's hooks in listed order, then the local hooks
// last. The returned config has no Extends. A config without presets is
// returned unchanged. Resolve is a pure function; cfg is not mutated.
func Resolve(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, &ValidationError{Cause: "config is nil"}
	}
	if cfg.Hooks == nil {
		return nil, &ValidationError{Cause: "hooks must be an ordered list (missing)"}
	}
	if len(cfg.Extends) == 0 {
		return cfg, nil
	}

	merged := make([]hook.Definition, 0, len(cfg.Hooks))
	settings := cfg.Settings

	for i, preset := range cfg.Extends {
		resolved, err := Resolve(preset)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve preset %d: %w", i, err)
		}
		merged = append(merged, resolved.Hooks...)
		if settings == nil && resolved.Settings != nil {
			settings = resolved.Settings
		}
	}
	merged = append(merged, cfg.Hooks...)

	return &Config{
		Hooks:    merged,
		Settings: settings,
	}, nil
}
