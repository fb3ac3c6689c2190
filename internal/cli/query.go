package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"caserag/internal/format"
)

type queryOptions struct {
	topK   int
	json   bool
	digest int
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Find the most similar labeled cases",
		Long: `Embeds the query text and prints the most similar reference cases,
highest cosine similarity first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, root, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().IntVarP(&opts.topK, "top", "k", 0, "number of cases to return (defaults to retrieval.top_k)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output results as JSON")
	cmd.Flags().IntVar(&opts.digest, "digest", 0, "replace each preview with a digest of at most N sentences")
	return cmd
}

func runQuery(cmd *cobra.Command, root *rootOptions, opts *queryOptions, query string) error {
	a, err := openApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := opts.topK
	if topK <= 0 {
		topK = a.TopK()
	}
	results := a.Index.FindSimilar(commandContext(cmd), query, topK)
	if opts.digest > 0 {
		for i := range results {
			results[i].Preview = a.Summarizer.Summarize(results[i].Text, opts.digest)
		}
	}

	if opts.json {
		return outputJSON(cmd, results)
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.SimilarCases(results))
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
