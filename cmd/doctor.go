package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/weekly-report/internal/gateway"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks the token and repository configuration",
	Long: `Resolves the user behind the token, checks that the configured repository
is visible and whether the user belongs to the organization.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDoctor(context.Background(), cmd); err != nil {
			fail("%v", err)
		}
	},
}

func runDoctor(ctx context.Context, cmd *cobra.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	owner, repo, _ := cfg.GitHub.OwnerRepo()

	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, gateway.Options{
		APIURL:  cfg.GitHub.APIURL,
		Timeout: cfg.HTTP.RequestTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	return diagnose(ctx, cmd.OutOrStdout(), githubGateway, owner, repo, cfg.GitHub.Org)
}

// diagnose prints what checker can see of owner/repo and whether its user belongs to org.
// Membership is informational only; the report itself treats failures as non-membership.
func diagnose(ctx context.Context, out io.Writer, checker gateway.AccessChecker, owner, repo, org string) error {
	info, err := checker.CheckAccess(ctx, owner, repo)
	if err != nil {
		return err
	}
	visibility := "public"
	if info.IsPrivate {
		visibility = "private"
	}
	fmt.Fprintf(out, "token user:   %s\n", info.Viewer)
	fmt.Fprintf(out, "repository:   %s (%s)\n", info.NameWithOwner, visibility)

	member, err := checker.IsMember(ctx, org, info.Viewer)
	switch {
	case err != nil:
		fmt.Fprintf(out, "organization: %s (membership check failed: %v)\n", org, err)
	case member:
		fmt.Fprintf(out, "organization: %s (member)\n", org)
	default:
		fmt.Fprintf(out, "organization: %s (not a member)\n", org)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringP("repo", "r", "", "Target repository as owner/name (overrides GITHUB_REPOSITORY)")
	doctorCmd.Flags().StringP("org", "o", "", "Organization to check membership of (overrides GITHUB_ORG)")
}
