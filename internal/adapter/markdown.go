package adapter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/michael-freling/agent-guardrails/internal/config"
)

// markdownAdapter renders a frontmatter markdown document describing the
// active hooks, the format used by agents that read markdown rule files.
type markdownAdapter struct {
	binary string
	path   string
}

// NewMarkdown creates a frontmatter markdown adapter for a tool detected
// by binary, writing to path (e.g. ".cursor/rules/guardrails.md").
func NewMarkdown(binary, path string) Adapter {
	return &markdownAdapter{binary: binary, path: path}
}

func (a *markdownAdapter) Name() string {
	return a.binary
}

func (a *markdownAdapter) Detect() bool {
	return toolOnPath(a.binary)
}

type frontmatterHook struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Events   []string `yaml:"events"`
	Priority int      `yaml:"priority"`
}

type frontmatter struct {
	Description string            `yaml:"description"`
	Hooks       []frontmatterHook `yaml:"hooks"`
}

func (a *markdownAdapter) Render(cfg *config.Config) (map[string][]byte, error) {
	fm := frontmatter{
		Description: "Guardrail hooks applied to this workspace",
	}
	for _, def := range cfg.Hooks {
		if !def.Enabled() {
			continue
		}
		events := make([]string, 0, len(def.EventTypes()))
		for _, t := range def.EventTypes() {
			events = append(events, string(t))
		}
		fm.Hooks = append(fm.Hooks, frontmatterHook{
			ID:       def.ID(),
			Name:     def.Name(),
			Events:   events,
			Priority: def.Priority(),
		})
	}

	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString("# Guardrails\n\n")
	for _, def := range cfg.Hooks {
		if !def.Enabled() {
			continue
		}
		fmt.Fprintf(&buf, "- **%s**: %s\n", def.Name(), def.Description())
	}

	return map[string][]byte{
		a.path: buf.Bytes(),
	}, nil
}
