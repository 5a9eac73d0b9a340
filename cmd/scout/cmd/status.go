package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index contents and health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			status, err := session.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			fmt.Fprintf(out, "Files:     %d\n", status.Files)
			fmt.Fprintf(out, "Documents: %d\n", status.Documents)
			fmt.Fprintf(out, "Symbols:   %d\n", status.Symbols)
			fmt.Fprintf(out, "Edges:     %d\n", status.Edges)
			if status.Provider != "" {
				fmt.Fprintf(out, "Vectors:   %d (%s)\n", status.Vectors, status.Provider)
			} else {
				fmt.Fprintln(out, "Vectors:   disabled")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
