package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/gitutil"
	"github.com/patrol-ci/patrol/internal/report"
	"github.com/patrol-ci/patrol/internal/review"
)

var (
	scanBaseRef    string
	scanStrictness int
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze the local changes of a repository before pushing",
	Long: `Analyze the local changes of a repository before pushing.

The scan command diffs HEAD against a base revision (origin/main by default),
runs the rule engine over the changed files of the worktree, and prints the
same report a PR review would produce. Use it as a pre-push check.

Examples:
  patrol scan
  patrol scan --base origin/develop ./my-repo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	scanCmd.Flags().StringVar(&scanBaseRef, "base", "origin/main", "Base revision to diff HEAD against")
	scanCmd.Flags().IntVar(&scanStrictness, "strictness", 0, "Override the strictness level (1-5)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := cliLogger()

	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	titleColor.Println("🔍 Patrol - Local Scan")
	dimColor.Printf("   Repository: %s\n", path)
	dimColor.Printf("   Base: %s\n\n", scanBaseRef)

	src, err := gitutil.NewLocalSource(path, scanBaseRef, logger)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	cfg, err := loadLocalRepoConfig(path)
	if err != nil {
		return err
	}
	if scanStrictness != 0 {
		cfg = review.Merge(cfg, review.Config{StrictnessLevel: scanStrictness})
	}

	orchestrator, err := review.NewOrchestrator(src, cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid review configuration: %w", err)
	}

	result, err := orchestrator.Review(ctx, 0)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report.WriteTerminal(os.Stdout, result)
	printVerdict(result.Verdict)

	if result.Verdict == review.VerdictBlock {
		return fmt.Errorf("blocking issues found")
	}
	return nil
}

// loadLocalRepoConfig reads .patrol.yml from the worktree root; a missing
// file yields the engine defaults.
func loadLocalRepoConfig(path string) (review.Config, error) {
	data, err := os.ReadFile(filepath.Join(path, config.RepoConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return review.DefaultConfig(), nil
		}
		return review.Config{}, fmt.Errorf("failed to read %s: %w", config.RepoConfigFile, err)
	}
	return config.ParseRepoConfig(data)
}
