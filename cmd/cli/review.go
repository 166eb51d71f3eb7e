package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/core"
	"github.com/patrol-ci/patrol/internal/github"
	"github.com/patrol-ci/patrol/internal/gitutil"
	"github.com/patrol-ci/patrol/internal/report"
	"github.com/patrol-ci/patrol/internal/review"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var (
	reviewStrictness int
	reviewPublish    bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run a rule-based code review for a GitHub Pull Request",
	Long: `Run a rule-based code review for a GitHub Pull Request.

The review command fetches the changed files of the PR, applies the active
rule set to each one, and prints a categorized issue report. With --publish
the report is also posted on the PR as a review with inline comments.

Examples:
  patrol review https://github.com/owner/repo/pull/123
  patrol review --strictness 5 --publish https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().IntVar(&reviewStrictness, "strictness", 0, "Override the strictness level (1-5)")
	reviewCmd.Flags().BoolVar(&reviewPublish, "publish", false, "Post the report on the PR as a review")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	prURL := args[0]
	logger := cliLogger()
	start := time.Now()

	titleColor.Println("🚀 Patrol - PR Review")
	dimColor.Printf("   Target: %s\n\n", prURL)

	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set\n\nTip: Set PATROL_GITHUB_TOKEN or pass --github-token")
	}
	ghClient := github.NewPATClient(ctx, token, logger)
	src := github.NewPRSource(ghClient, owner, repoName)

	headSHA, err := src.ResolveHeadRef(ctx, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	dimColor.Printf("   Head: %s\n", truncateSHA(headSHA))

	cfg, err := loadRemoteRepoConfig(ctx, ghClient, owner, repoName, headSHA)
	if err != nil {
		return err
	}
	if reviewStrictness != 0 {
		cfg = review.Merge(cfg, review.Config{StrictnessLevel: reviewStrictness})
	}

	orchestrator, err := review.NewOrchestrator(src, cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid review configuration: %w", err)
	}

	fmt.Println("Analyzing changed files...")
	result, err := orchestrator.Review(ctx, prNumber)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(start).Round(time.Millisecond))
	}

	report.WriteTerminal(os.Stdout, result)

	if reviewPublish {
		if err := publishReview(ctx, ghClient, owner, repoName, prNumber, headSHA, result); err != nil {
			return fmt.Errorf("failed to publish review: %w", err)
		}
		successColor.Println("✅ Review published on the pull request")
	}

	printVerdict(result.Verdict)
	return nil
}

// loadRemoteRepoConfig fetches .patrol.yml from the repository head, falling
// back to the engine defaults when the file does not exist.
func loadRemoteRepoConfig(ctx context.Context, client github.Client, owner, repo, ref string) (review.Config, error) {
	content, err := client.GetFileContent(ctx, owner, repo, config.RepoConfigFile, ref)
	if err != nil {
		if errors.Is(err, review.ErrContentNotFound) {
			return review.DefaultConfig(), nil
		}
		return review.Config{}, fmt.Errorf("failed to fetch %s: %w", config.RepoConfigFile, err)
	}
	return config.ParseRepoConfig([]byte(content))
}

func publishReview(ctx context.Context, client github.Client, owner, repo string, prNumber int, headSHA string, result *review.Result) error {
	files, err := client.ListChangedFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return err
	}
	patches := make(map[string]string, len(files))
	for _, f := range files {
		patches[f.Filename] = f.Patch
	}

	updater := github.NewStatusUpdater(client)
	event := &core.ReviewEvent{
		RepoOwner:    owner,
		RepoName:     repo,
		RepoFullName: owner + "/" + repo,
		PRNumber:     prNumber,
		HeadSHA:      headSHA,
	}
	return updater.PostReview(ctx, event, result, patches)
}

func printVerdict(v review.Verdict) {
	fmt.Println()
	switch v {
	case review.VerdictBlock:
		errorColor.Println("🚫 Verdict: BLOCK")
	case review.VerdictWarn:
		warnColor.Println("⚠️  Verdict: WARN")
	case review.VerdictReport:
		fmt.Println("📝 Verdict: REPORT")
	default:
		successColor.Println("✅ Verdict: PASS")
	}
}

func truncateSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
