package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"caserag/internal/app"
	"caserag/internal/severity"
)

type scoreOutput struct {
	Score  int    `json:"score"`
	Scorer string `json:"scorer"`
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	var (
		note   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score severity from patient indicators",
		Long: `Reads patient indicators as JSON from a file, or from stdin when no file
or "-" is given, and prints a severity score between 0 and 10.

Example input:
  {"age": 22, "sleep_issues": true, "energy_level": "low", "hopelessness": true}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := readPatientInfo(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr(), root.verbose)
			scorer := severity.New(commandContext(cmd), severity.Config{
				Endpoint:    cfg.Severity.Endpoint,
				TimeoutSecs: cfg.Severity.TimeoutSecs,
			}, logger)

			score, err := scorer.Predict(commandContext(cmd), info, note)
			if err != nil {
				return fmt.Errorf("severity prediction failed: %w", err)
			}
			out := scoreOutput{Score: score, Scorer: scorer.Name()}
			if asJSON {
				return outputJSON(cmd, out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Severity: %d/%d (%s)\n", out.Score, severity.MaxScore, out.Scorer)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "free-text clinical observation passed to the model scorer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the score as JSON")
	return cmd
}

func readPatientInfo(cmd *cobra.Command, args []string) (severity.PatientInfo, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return severity.PatientInfo{}, err
		}
		defer f.Close()
		r = f
	}
	var info severity.PatientInfo
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return severity.PatientInfo{}, fmt.Errorf("invalid patient info: %w", err)
	}
	return info, nil
}
