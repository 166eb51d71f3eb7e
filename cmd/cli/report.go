package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patrol-ci/patrol/internal/gitutil"
	"github.com/patrol-ci/patrol/internal/report"
	"github.com/patrol-ci/patrol/internal/review"
	"github.com/patrol-ci/patrol/internal/storage"
	"github.com/patrol-ci/patrol/internal/wire"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [pr-url]",
	Short: "Show the latest stored review report for a Pull Request",
	Long: `Show the latest stored review report for a Pull Request.

The report command reads the most recent review the service persisted for the
given PR and renders it in the terminal. It needs access to the Patrol
database, so it is meant to be run where the service configuration lives.

Examples:
  patrol report https://github.com/owner/repo/pull/123
  patrol report --json https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the raw stored report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}
	repoFullName := owner + "/" + repoName

	application, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	record, err := application.Store.GetLatestReviewForPR(ctx, repoFullName, prNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNoReview) {
			return fmt.Errorf("no stored review for %s#%d\n\nTip: Trigger one by commenting /review on the PR", repoFullName, prNumber)
		}
		return fmt.Errorf("failed to load review: %w", err)
	}

	if reportJSON {
		_, err = os.Stdout.Write(append(record.Report, '\n'))
		return err
	}

	var result review.Result
	if err := json.Unmarshal(record.Report, &result); err != nil {
		return fmt.Errorf("stored report is not readable: %w", err)
	}

	titleColor.Printf("📋 Patrol Report for %s#%d\n", repoFullName, prNumber)
	dimColor.Printf("   Head: %s\n", truncateSHA(record.HeadSHA))
	dimColor.Printf("   Reviewed: %s\n\n", record.CreatedAt.Format("2006-01-02 15:04:05"))

	fmt.Print(report.RenderMarkdown(report.Markdown(&result)))
	printVerdict(result.Verdict)
	return nil
}
