package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newImpactedCmd() *cobra.Command {
	var (
		depth      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "impacted <file>...",
		Short: "List files affected by a change set",
		Long: `Walk the import graph in reverse from the changed files and list
everything that depends on them, directly or transitively. The
changed files themselves are always part of the result.

Paths are relative to the repository root, e.g.:
  scout impacted internal/auth/token.go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			impacted, err := session.Impacted(cmd.Context(), args, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(impacted)
			}
			for _, path := range impacted {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Traversal depth (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
