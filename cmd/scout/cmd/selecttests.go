package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSelectTestsCmd() *cobra.Command {
	var (
		maxTests   int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "select-tests <file>...",
		Short: "Rank tests to run for a change set",
		Long: `Compute the impact set of the changed files and rank the
repository's test files by proximity to it. When nothing links the
tests to the change, a small deterministic fallback set is returned
and marked as such.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			selection, err := session.SelectTests(cmd.Context(), args, maxTests)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(selection)
			}

			if selection.Fallback {
				fmt.Fprintln(out, "No tests linked to the change; fallback selection:")
			}
			for _, test := range selection.SelectedTests {
				fmt.Fprintln(out, test)
			}
			if len(selection.SelectedTests) == 0 {
				fmt.Fprintln(out, "No test files in the index.")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxTests, "max", "m", 0, "Maximum tests to select (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
