package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/weekly-report/internal/domain"
	"github.com/naka-gawa/weekly-report/internal/gateway"
	"github.com/naka-gawa/weekly-report/internal/render"
	"github.com/naka-gawa/weekly-report/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Prints the weekly markdown report of a repository",
	Long: `Fetches the latest pull requests and the open issues of the repository,
keeps those authored by members of the organization and prints a markdown
report of what was merged, what waits for review, what is in progress and
which issues were opened.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runReport(ctx, cmd, time.Now()); err != nil {
			fail("%v", err)
		}
	},
}

// runReport builds the report for a run happening at now and prints it to the command's output.
// Nothing is printed unless the whole report could be built.
func runReport(ctx context.Context, cmd *cobra.Command, now time.Time) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	withSummary, _ := cmd.Flags().GetBool("summary")

	owner, repo, _ := cfg.GitHub.OwnerRepo()
	window := domain.NewDateWindow(now)

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, gateway.Options{
		APIURL:            cfg.GitHub.APIURL,
		RateLimitMaxSleep: cfg.GitHub.RateLimitMaxSleep,
		Timeout:           cfg.HTTP.RequestTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	classifier := usecase.NewClassifier(githubGateway, cfg.GitHub.Org, cfg.Report.Concurrency, logger)
	reporter := usecase.NewReporter(githubGateway, classifier, logger)

	report, err := reporter.Generate(ctx, owner, repo, window)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	markdown := render.NewMarkdown(cfg.GitHub.WebURL, cfg.GitHub.Repository, render.Labels{
		Merged:        cfg.Report.Labels.Merged,
		WaitingReview: cfg.Report.Labels.WaitingReview,
		InProgress:    cfg.Report.Labels.InProgress,
		IssuesOpened:  cfg.Report.Labels.IssuesOpened,
	})
	body := render.Banner(markdown.Render(report))

	var summary []byte
	if withSummary {
		summary, err = json.MarshalIndent(usecase.Summarize(report), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary to JSON: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, body)
	if summary != nil {
		fmt.Fprintln(out, string(summary))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("repo", "r", "", "Target repository as owner/name (overrides GITHUB_REPOSITORY)")
	reportCmd.Flags().StringP("org", "o", "", "Organization whose members are reported (overrides GITHUB_ORG)")
	reportCmd.Flags().Bool("summary", false, "Also print a JSON summary with counts and lead times")
}
