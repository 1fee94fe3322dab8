package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/michael-freling/agent-guardrails/internal/adapter"
	"github.com/michael-freling/agent-guardrails/internal/config"
	"github.com/michael-freling/agent-guardrails/internal/engine"
	"github.com/michael-freling/agent-guardrails/internal/event"
	"github.com/michael-freling/agent-guardrails/internal/hook"
	"github.com/michael-freling/agent-guardrails/internal/policy"
)

var (
	configPath  string
	auditPath   string
	toolName    string
	toolVersion string
)

// exitError carries the process exit code of a command that completed but
// must report its result through the exit status, such as a blocked check.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guardrails",
		Short: "Policy guardrails for AI coding assistant events",
		Long:  `A CLI tool that runs a prioritized chain of policy hooks against lifecycle events emitted by AI coding assistants, blocking or observing the triggering action.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to guardrails.yaml (default: search working directory, then ~/.config/guardrails)")
	rootCmd.PersistentFlags().StringVar(&auditPath, "audit-file", ".guardrails/audit.log", "path of the audit log written by the audit-log policy")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newPoliciesCmd())

	return rootCmd
}

// loadConfig builds the policy registry and loads the resolved config.
func loadConfig() (*config.Config, error) {
	registry := config.NewRegistry()
	if err := policy.RegisterBuiltin(registry, auditPath); err != nil {
		return nil, err
	}

	loader := config.NewLoader(registry)
	if configPath != "" {
		return loader.Load(configPath)
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "guardrails"))
	}
	return loader.Discover(dirs...)
}

// newLogger builds a stderr logger honoring the configured log level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Settings != nil {
		switch cfg.Settings.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check one event against the configured hooks",
		Long:  `Reads one event occurrence from stdin as JSON and runs the configured hook chain. Returns exit code 0 to allow, exit code 2 to block.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := event.DecodeReader(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to decode event: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			workDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			eng, err := engine.New(cfg,
				engine.WithLogger(newLogger(cfg)),
				engine.WithWorkDir(workDir),
			)
			if err != nil {
				return err
			}

			verdict, err := eng.Check(cmd.Context(), ev, hook.Identity{Name: toolName, Version: toolVersion})
			if err != nil && (verdict == nil || !verdict.Blocked) {
				return fmt.Errorf("failed to check event: %w", err)
			}

			if verdict.Blocked {
				fmt.Fprintf(cmd.ErrOrStderr(), "Blocked: %s\n", verdict.Reason)
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return &exitError{code: 2}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&toolName, "tool-name", "unknown", "name of the tool that emitted the event")
	cmd.Flags().StringVar(&toolVersion, "tool-version", "", "version of the tool that emitted the event")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var outputDir string
	var adapterName string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate native hook config files for installed tools",
		Long:  `Renders the resolved hook set into each tool's native configuration format, writing files under the output directory. Without --adapter, every detected tool is generated.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			registry := adapter.NewRegistry(
				adapter.NewClaudeCode("guardrails check --tool-name claude-code"),
				adapter.NewMarkdown("cursor", ".cursor/rules/guardrails.md"),
			)

			var adapters []adapter.Adapter
			if adapterName != "" {
				a, ok := registry.Get(adapterName)
				if !ok {
					return fmt.Errorf("unknown adapter %q", adapterName)
				}
				adapters = []adapter.Adapter{a}
			} else {
				adapters = registry.Detected()
				if len(adapters) == 0 {
					return errors.New("no supported tools detected; use --adapter to force one")
				}
			}

			for _, a := range adapters {
				files, err := a.Render(cfg)
				if err != nil {
					return fmt.Errorf("failed to render %s config: %w", a.Name(), err)
				}
				for rel, content := range files {
					path := filepath.Join(outputDir, rel)
					if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
						return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
					}
					if err := os.WriteFile(path, content, 0o644); err != nil {
						return fmt.Errorf("failed to write %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", path, a.Name())
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to write generated files under")
	cmd.Flags().StringVarP(&adapterName, "adapter", "a", "", "generate for a single adapter by name")

	return cmd
}

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List built-in policies",
		Long:  `Lists every built-in policy name usable in guardrails.yaml, with its description.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := config.NewRegistry()
			if err := policy.RegisterBuiltin(registry, auditPath); err != nil {
				return err
			}

			for _, name := range registry.Names() {
				factory, _ := registry.Lookup(name)
				def, err := factory()
				if err != nil {
					return fmt.Errorf("failed to build policy %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, def.Description())
			}
			return nil
		},
	}
}
