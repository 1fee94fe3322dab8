package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{
			name:    "simple command",
			command: "git push origin main",
			want:    []string{"git", "push", "origin", "main"},
		},
		{
			name:    "collapses whitespace",
			command: "rm   -rf\t/",
			want:    []string{"rm", "-rf", "/"},
		},
		{
			name:    "double quoted string stays one token",
			command: `echo "rm -rf /"`,
			want:    []string{"echo", `"rm -rf /"`},
		},
		{
			name:    "single quoted string stays one token",
			command: "echo 'hello world'",
			want:    []string{"echo", "'hello world'"},
		},
		{
			name:    "empty command",
			command: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTokens(tt.command))
		})
	}
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{
			name:    "normalizes whitespace",
			command: "rm   -rf   /",
			want:    "rm -rf /",
		},
		{
			name:    "drops quoted strings",
			command: `echo "rm -rf /" done`,
			want:    "echo done",
		},
		{
			name:    "plain command unchanged",
			command: "ls -la",
			want:    "ls -la",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCommand(tt.command))
		})
	}
}
