// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/naka-gawa/weekly-report/internal/domain"
	"github.com/naka-gawa/weekly-report/internal/gateway"
)

// Reporter is the use case for building the weekly report.
// It orchestrates fetching and classifying the repository activity.
type Reporter struct {
	fetcher    gateway.Fetcher
	classifier *Classifier
	logger     *zap.SugaredLogger
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, classifier *Classifier, logger *zap.SugaredLogger) *Reporter {
	return &Reporter{
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger,
	}
}

// Generate fetches pull requests, then issues, and classifies both for window.
// Any fetch failure aborts the run; there is no partial report.
func (r *Reporter) Generate(ctx context.Context, owner, repo string, window domain.DateWindow) (*domain.Report, error) {
	r.logger.Infof("Usecase: Building report for %s/%s, window %s - %s", owner, repo,
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	prs, err := r.fetcher.FetchPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	issues, err := r.fetcher.FetchIssues(ctx, owner, repo, window.Start)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("Usecase: Fetched %d pull requests and %d issues.", len(prs), len(issues))

	report, err := r.classifier.Classify(ctx, window, prs, issues)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Usecase: Classification complete.")
	return report, nil
}
