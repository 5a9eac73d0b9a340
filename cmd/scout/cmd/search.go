package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed repository",
		Long: `Run hybrid retrieval over the index: symbol lookup, full-text
match, and dense similarity, fused into one ranked list. Every
result carries a snippet read from the file's current content.

Examples:
  scout search "token refresh"
  scout search parseConfig --limit 5
  scout search "retry backoff" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			session, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			hits, err := session.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(hits)
			}

			if len(hits) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			for i, hit := range hits {
				location := hit.Path
				if hit.Symbol != "" {
					location = fmt.Sprintf("%s:%d %s", hit.Path, hit.StartLine, hit.Symbol)
				}
				fmt.Fprintf(out, "%2d. %s  (%.3f, %s)\n",
					i+1, location, hit.Score, strings.Join(hit.Sources, "+"))
				for _, line := range strings.Split(hit.Snippet, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
