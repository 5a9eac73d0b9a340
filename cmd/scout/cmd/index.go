package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the repository index",
		Long: `Scan the repository and bring every index layer up to date:
tracker, full-text, symbols, import graph, dense vectors, and the
ANN cache. Unchanged files are skipped, so re-running after a small
edit touches only what the edit invalidated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			start := time.Now()
			stats, err := session.Build(ctx)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(out, "Indexed %d files (%d unchanged, %d deleted) in %s\n",
				stats.FilesIndexed, stats.FilesUnchanged, stats.FilesDeleted,
				elapsed.Round(time.Millisecond))
			fmt.Fprintf(out, "Graph: %d files updated, %d edges added\n",
				stats.GraphFilesUpdated, stats.EdgesAdded)
			fmt.Fprintf(out, "Vectors: %d embedded, %d unchanged, %d pruned\n",
				stats.ChunksEmbedded, stats.ChunksSkipped, stats.ChunksPruned)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output build stats as JSON")

	return cmd
}
