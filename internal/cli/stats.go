package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"caserag/internal/domain"
	"caserag/internal/format"
	"caserag/internal/index"
)

type statsOutput struct {
	Source    index.Source         `json:"source"`
	Documents int                  `json:"documents"`
	Dimension int                  `json:"dimension"`
	Labels    map[domain.Label]int `json:"labels"`
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the label distribution of the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			out := statsOutput{
				Source:    a.Index.Source(),
				Documents: a.Index.Len(),
				Dimension: a.Index.Dimension(),
				Labels:    a.Index.LabelDistribution(),
			}
			if asJSON {
				return outputJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Source:    %s\n", out.Source)
			fmt.Fprintf(w, "Documents: %d\n", out.Documents)
			fmt.Fprintf(w, "Dimension: %d\n\n", out.Dimension)
			fmt.Fprint(w, format.Distribution(out.Labels))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output statistics as JSON")
	return cmd
}
