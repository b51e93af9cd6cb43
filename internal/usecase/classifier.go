package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/weekly-report/internal/domain"
	"github.com/naka-gawa/weekly-report/internal/gateway"
)

// Classifier sorts pull requests and issues into report buckets,
// keeping only items authored by members of an organization.
type Classifier struct {
	members     gateway.MemberChecker
	org         string
	concurrency int
	logger      *zap.SugaredLogger
}

// NewClassifier creates a Classifier checking membership of org with at most concurrency requests in flight.
func NewClassifier(members gateway.MemberChecker, org string, concurrency int, logger *zap.SugaredLogger) *Classifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Classifier{
		members:     members,
		org:         org,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Classify builds the report for window. Entries keep the input order within each bucket.
// Only a cancelled context makes it fail, even when every check has already returned;
// other membership errors count as non-membership.
func (c *Classifier) Classify(ctx context.Context, window domain.DateWindow, prs []domain.PullRequest, issues []domain.Issue) (*domain.Report, error) {
	logins := make([]string, 0, len(prs)+len(issues))
	for _, pr := range prs {
		logins = append(logins, pr.Author)
	}
	for _, issue := range issues {
		logins = append(logins, issue.Author)
	}
	membership, err := c.resolveMembers(ctx, logins)
	if err != nil {
		return nil, err
	}

	report := domain.NewReport(window)
	for _, pr := range prs {
		if pr.Author == "" || !membership[pr.Author] {
			continue
		}
		if bucket, ok := classifyPullRequest(pr, window); ok {
			report.Add(bucket, domain.Entry{
				Kind:      domain.KindPullRequest,
				Number:    pr.Number,
				Title:     pr.Title,
				Author:    pr.Author,
				CreatedAt: pr.CreatedAt,
				MergedAt:  pr.MergedAt,
			})
		}
	}

	// Issues are already limited to open ones updated inside the window, so no date check here.
	for _, issue := range issues {
		if issue.Author == "" || !membership[issue.Author] {
			continue
		}
		report.Add(domain.IssuesOpened, domain.Entry{
			Kind:      domain.KindIssue,
			Number:    issue.Number,
			Title:     issue.Title,
			Author:    issue.Author,
			CreatedAt: issue.CreatedAt,
		})
	}
	return report, nil
}

// classifyPullRequest returns the bucket of a member's pull request, if any.
func classifyPullRequest(pr domain.PullRequest, window domain.DateWindow) (domain.Bucket, bool) {
	if pr.MergedAt != nil && window.Contains(*pr.MergedAt) {
		return domain.MergedThisWeek, true
	}
	if !pr.IsOpen() || pr.MergedAt != nil {
		return 0, false
	}
	if !window.Contains(pr.CreatedAt) {
		return 0, false
	}
	if pr.Draft {
		return domain.InProgress, true
	}
	return domain.WaitingReview, true
}

// resolveMembers checks every distinct non-empty login once, concurrently.
func (c *Classifier) resolveMembers(ctx context.Context, logins []string) (map[string]bool, error) {
	var distinct []string
	seen := make(map[string]struct{}, len(logins))
	for _, login := range logins {
		if login == "" {
			continue
		}
		if _, ok := seen[login]; ok {
			continue
		}
		seen[login] = struct{}{}
		distinct = append(distinct, login)
	}
	c.logger.Infof("Usecase: Checking %s membership of %d users...", c.org, len(distinct))

	// Each goroutine owns one slot, so no locking is needed.
	results := make([]bool, len(distinct))
	eg := new(errgroup.Group)
	eg.SetLimit(c.concurrency)
	for i, login := range distinct {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			member, err := c.members.IsMember(ctx, c.org, login)
			if err != nil {
				// A cancelled run aborts; it is not a failed check.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.logger.Debugw("membership check failed, treating as non-member", "user", login, "error", err)
				return nil
			}
			results[i] = member
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	membership := make(map[string]bool, len(distinct))
	for i, login := range distinct {
		membership[login] = results[i]
	}
	return membership, nil
}
