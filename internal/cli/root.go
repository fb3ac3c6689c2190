// Package cli exposes the similarity index and the severity scorer as cobra
// commands.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"caserag/internal/app"
	"caserag/internal/config"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree. Running the root without a
// subcommand starts the TUI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "caserag",
		Short: "Find labeled historical cases similar to a counselor note",
		Long: `caserag embeds a labeled corpus of historical posts once, caches the
vectors, and retrieves the cases most similar to a free-text query.

It also scores the severity of structured patient indicators.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file (defaults to ./config.yaml or ~/.config/caserag/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newTUICmd(opts),
		newQueryCmd(opts),
		newStatsCmd(opts),
		newInvalidateCmd(opts),
		newScoreCmd(opts),
	)
	return root
}

// Execute loads .env and runs the command tree with ctx.
func Execute(ctx context.Context) error {
	_ = godotenv.Load()
	return NewRootCmd().ExecuteContext(ctx)
}

func loadConfig(opts *rootOptions) (*config.AppConfig, error) {
	if opts.configPath == "" {
		cfg, _, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openApp loads the config and builds the application context. Logs go to
// the command's error stream so that stdout stays machine readable.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app.Context, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr(), opts.verbose)
	return app.New(commandContext(cmd), cfg, logger)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
