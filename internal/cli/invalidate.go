package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"caserag/internal/app"
	"caserag/internal/index"
)

func newInvalidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Delete the cached embeddings",
		Long: `Deletes both cache artifacts so that the next run re-embeds the corpus.
Use it after replacing the corpus file or switching embedders.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			store, err := app.OpenStore(commandContext(cmd), cfg)
			if err != nil {
				return fmt.Errorf("open cache store: %w", err)
			}
			defer store.Close()
			if err := index.Invalidate(commandContext(cmd), store); err != nil {
				return fmt.Errorf("invalidate cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Embedding cache cleared (%s).\n", cfg.Cache.Type)
			return nil
		},
	}
}
