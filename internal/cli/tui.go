package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"caserag/internal/tui"
)

func newTUICmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		Long: `Launch the interactive terminal UI for browsing similar cases.

Controls:
  Enter  - Search
  ↑, ↓   - Browse results
  Tab    - Toggle post digest
  Ctrl+C - Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, root)
		},
	}
}

func runTUI(cmd *cobra.Command, root *rootOptions) error {
	a, err := openApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.New(a.Index, a.Summarizer, tui.Options{
		TopK:   a.TopK(),
		Status: fmt.Sprintf("Loaded %d cases (%s). Type to search.", a.Index.Len(), a.Index.Source()),
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(commandContext(cmd)),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
