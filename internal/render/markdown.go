// Package render turns a classified report into markdown.
package render

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/weekly-report/internal/domain"
)

// EmptyReport is the whole report when every bucket is empty.
const EmptyReport = "- No items to report this week."

const bannerLine = "----------------------------------"

// Labels holds the heading line printed above each non-empty bucket.
type Labels struct {
	Merged        string
	WaitingReview string
	InProgress    string
	IssuesOpened  string
}

func (l Labels) of(b domain.Bucket) string {
	switch b {
	case domain.MergedThisWeek:
		return l.Merged
	case domain.WaitingReview:
		return l.WaitingReview
	case domain.InProgress:
		return l.InProgress
	default:
		return l.IssuesOpened
	}
}

// Markdown renders reports for one repository.
type Markdown struct {
	webURL     string
	repository string
	labels     Labels
}

// NewMarkdown creates a renderer linking items to webURL/repository (e.g. https://github.com and owner/repo).
func NewMarkdown(webURL, repository string, labels Labels) *Markdown {
	return &Markdown{
		webURL:     strings.TrimSuffix(webURL, "/"),
		repository: repository,
		labels:     labels,
	}
}

// Render returns the markdown body of the report.
func (m *Markdown) Render(report *domain.Report) string {
	if report.IsEmpty() {
		return EmptyReport
	}

	var sb strings.Builder
	for _, b := range domain.Buckets {
		entries := report.Entries(b)
		if len(entries) == 0 {
			continue
		}
		sb.WriteString(m.labels.of(b))
		sb.WriteString("\n")
		for _, e := range entries {
			fmt.Fprintf(&sb, "    - **%s** %s %s\n", e.Title, m.URL(e), e.Author)
		}
	}
	return sb.String()
}

// URL returns the web link of the pull request or issue behind an entry.
func (m *Markdown) URL(e domain.Entry) string {
	kind := "pull"
	if e.Kind == domain.KindIssue {
		kind = "issues"
	}
	return fmt.Sprintf("%s/%s/%s/%d", m.webURL, m.repository, kind, e.Number)
}

// Banner wraps a rendered report between the banner lines printed to the console.
func Banner(body string) string {
	return bannerLine + "\nMarkdown Report\n" + bannerLine + "\n" + body + "\n" + bannerLine
}
