// Package cmd provides the CLI commands for scout.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scout/internal/config"
	"scout/internal/index"
	"scout/internal/logging"
	"scout/pkg/version"
)

var (
	repoFlag       string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the scout CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Incremental code index with hybrid retrieval",
		Long: `Scout keeps an incremental index of a repository: full-text,
symbols, import graph, and dense vectors. Queries combine all of
them and ground every result in current file content.

Run 'scout index' in a repository, then 'scout search <query>'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("scout version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&repoFlag, "repo", "r", ".", "Repository root")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newImpactedCmd())
	cmd.AddCommand(newSelectTestsCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.File,
		WriteToStderr: false,
	}
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	_, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// repoRoot resolves the --repo flag to an absolute path.
func repoRoot() (string, error) {
	root, err := filepath.Abs(repoFlag)
	if err != nil {
		return "", fmt.Errorf("resolve repository root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("repository root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root %s is not a directory", root)
	}
	return root, nil
}

// openSession loads configuration and opens the stores for the
// resolved repository root.
func openSession() (*index.Session, error) {
	root, err := repoRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return index.Open(cfg, root)
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
