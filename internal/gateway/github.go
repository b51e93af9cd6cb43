// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/weekly-report/internal/domain"
)

// pageSize is the single page fetched by the list calls; later pages are never requested.
const pageSize = 100

// MemberChecker answers organization membership questions.
type MemberChecker interface {
	IsMember(ctx context.Context, org, user string) (bool, error)
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	MemberChecker
	FetchPullRequests(ctx context.Context, owner, repo string) ([]domain.PullRequest, error)
	FetchIssues(ctx context.Context, owner, repo string, since time.Time) ([]domain.Issue, error)
}

// AccessChecker verifies that the configured credentials can see a repository
// and whether their user belongs to an organization.
type AccessChecker interface {
	MemberChecker
	CheckAccess(ctx context.Context, owner, repo string) (*AccessInfo, error)
}

// AccessInfo is what the token is able to see.
type AccessInfo struct {
	Viewer        string
	NameWithOwner string
	IsPrivate     bool
}

// Options configures the HTTP transport shared by both clients.
type Options struct {
	// APIURL points the clients at a GitHub Enterprise host (e.g. https://ghe.example.com/api/v3/).
	APIURL string
	// RateLimitMaxSleep enables waiting on secondary rate limits, up to this long per sleep.
	RateLimitMaxSleep time.Duration
	Timeout           time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher and AccessChecker interfaces.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.SugaredLogger
}

// accessQuery asks who the token belongs to and whether it can see the repository.
type accessQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	Repository struct {
		NameWithOwner githubv4.String
		IsPrivate     githubv4.Boolean
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	var base http.RoundTripper = http.DefaultTransport
	if opts.RateLimitMaxSleep > 0 {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(opts.RateLimitMaxSleep, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = rateLimitWaiter
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.APIURL != "" {
		var err error
		restClient, err = restClient.WithEnterpriseURLs(opts.APIURL, opts.APIURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(enterpriseGraphQLURL(opts.APIURL), httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}, nil
}

// enterpriseGraphQLURL maps https://host/api/v3/ to https://host/api/graphql.
func enterpriseGraphQLURL(apiURL string) string {
	u := strings.TrimSuffix(apiURL, "/")
	u = strings.TrimSuffix(u, "/v3")
	return u + "/graphql"
}

// FetchPullRequests returns the most recently updated pull requests of the repository, in any state.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, owner, repo string) ([]domain.PullRequest, error) {
	g.logger.Infof("[1/2] Fetching pull requests of %s/%s...", owner, repo)
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	prs, _, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests with REST API: %w", err)
	}

	result := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		var mergedAt *time.Time
		if pr.MergedAt != nil {
			t := pr.GetMergedAt().Time
			mergedAt = &t
		}
		result = append(result, domain.PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			Author:    pr.GetUser().GetLogin(),
			CreatedAt: pr.GetCreatedAt().Time,
			MergedAt:  mergedAt,
			State:     pr.GetState(),
			Draft:     pr.GetDraft(),
		})
	}
	g.logger.Debugf("Completed fetching %d pull requests.", len(result))
	return result, nil
}

// FetchIssues returns open issues updated since the given time.
// The issues endpoint also lists pull requests; those are dropped.
func (g *GitHubGateway) FetchIssues(ctx context.Context, owner, repo string, since time.Time) ([]domain.Issue, error) {
	g.logger.Infof("[2/2] Fetching issues of %s/%s updated since %s...", owner, repo, since.Format(time.RFC3339))
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Since:       since,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	issues, _, err := g.restClient.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues with REST API: %w", err)
	}

	result := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		result = append(result, domain.Issue{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			Author:    issue.GetUser().GetLogin(),
			CreatedAt: issue.GetCreatedAt().Time,
		})
	}
	g.logger.Debugf("Completed fetching %d issues (%d pull requests skipped).", len(result), len(issues)-len(result))
	return result, nil
}

// IsMember reports whether user belongs to org.
// A "not a member" answer is (false, nil); any other failure is returned as an error.
func (g *GitHubGateway) IsMember(ctx context.Context, org, user string) (bool, error) {
	member, _, err := g.restClient.Organizations.IsMember(ctx, org, user)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %s in %s: %w", user, org, err)
	}
	return member, nil
}

// CheckAccess resolves the token's user and the repository through the GraphQL API.
func (g *GitHubGateway) CheckAccess(ctx context.Context, owner, repo string) (*AccessInfo, error) {
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	var q accessQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for access check: %w", err)
	}
	return &AccessInfo{
		Viewer:        string(q.Viewer.Login),
		NameWithOwner: string(q.Repository.NameWithOwner),
		IsPrivate:     bool(q.Repository.IsPrivate),
	}, nil
}
