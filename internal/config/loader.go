package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/michael-freling/agent-guardrails/internal/hook"
)

// DefaultFileName is the config file name Discover looks for.
const DefaultFileName = "guardrails.yaml"

// ConfigNotFoundError reports that no config source could be located.
type ConfigNotFoundError struct {
	Searched []string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no config found (searched %s)", strings.Join(e.Searched, ", "))
}

// fileConfig is the declarative YAML form of a config. Hooks reference
// registered policies by name; the file never carries code.
type fileConfig struct {
	Extends  []string  `yaml:"extends"`
	Settings *Settings `yaml:"settings"`
	Hooks    []hookRef `yaml:"hooks"`
}

// hookRef selects one registered policy, optionally overriding its
// priority or enabled flag.
type hookRef struct {
	Policy   string `yaml:"policy"`
	Priority *int   `yaml:"priority"`
	Enabled  *bool  `yaml:"enabled"`
}

// Loader reads declarative YAML configs, materializing hook definitions
// through an explicit policy registry.
type Loader struct {
	registry *Registry
}

// NewLoader creates a loader backed by the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// Discover looks for the default config file in each dir in order, loads
// and resolves the first one found, and returns ConfigNotFoundError with
// every searched location when none exists.
func (l *Loader) Discover(dirs ...string) (*Config, error) {
	searched := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		path := filepath.Join(dir, DefaultFileName)
		if _, err := os.Stat(path); err == nil {
			return l.Load(path)
		}
		searched = append(searched, path)
	}
	return nil, &ConfigNotFoundError{Searched: searched}
}

// Load reads, validates, and resolves the config at path, including its
// extends chain. Extends entries are paths relative to the including file.
func (l *Loader) Load(path string) (*Config, error) {
	cfg, err := l.load(path, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	// Settings are defaulted and overridden only after resolution, so a
	// preset's settings block survives when the local file has none.
	if resolved.Settings == nil {
		resolved.Settings = &Settings{}
	}
	if err := env.Parse(resolved.Settings); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return resolved, nil
}

func (l *Loader) load(path string, visited map[string]bool) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	if visited[abs] {
		return nil, &ValidationError{Cause: fmt.Sprintf("extends cycle through %s", path)}
	}
	visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{Searched: []string{path}}
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if fc.Hooks == nil {
		return nil, &ValidationError{Cause: fmt.Sprintf("%s: hooks must be an ordered list", path)}
	}

	hooks := make([]hook.Definition, 0, len(fc.Hooks))
	for i, ref := range fc.Hooks {
		def, err := l.materialize(ref)
		if err != nil {
			return nil, fmt.Errorf("%s: hook %d: %w", path, i, err)
		}
		hooks = append(hooks, def)
	}

	presets := make([]*Config, 0, len(fc.Extends))
	for _, rel := range fc.Extends {
		presetPath := rel
		if !filepath.IsAbs(presetPath) {
			presetPath = filepath.Join(filepath.Dir(abs), rel)
		}
		preset, err := l.load(presetPath, visited)
		if err != nil {
			return nil, fmt.Errorf("failed to load preset %s: %w", rel, err)
		}
		presets = append(presets, preset)
	}

	return &Config{
		Hooks:    hooks,
		Settings: fc.Settings,
		Extends:  presets,
	}, nil
}

// materialize turns one policy reference into a hook definition.
func (l *Loader) materialize(ref hookRef) (hook.Definition, error) {
	if ref.Policy == "" {
		return hook.Definition{}, fmt.Errorf("policy name is required")
	}
	factory, ok := l.registry.Lookup(ref.Policy)
	if !ok {
		return hook.Definition{}, fmt.Errorf("unknown policy %q", ref.Policy)
	}

	def, err := factory()
	if err != nil {
		return hook.Definition{}, fmt.Errorf("policy %s: %w", ref.Policy, err)
	}
	if ref.Priority != nil {
		def = def.WithPriority(*ref.Priority)
	}
	if ref.Enabled != nil {
		def = def.WithEnabled(*ref.Enabled)
	}
	return def, nil
}
