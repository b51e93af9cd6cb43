// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// PullRequest is a snapshot of a pull request as returned by the repository listing.
type PullRequest struct {
	Number    int
	Title     string
	Author    string // empty when the API reports no user
	CreatedAt time.Time
	MergedAt  *time.Time
	State     string
	Draft     bool
}

// IsOpen reports whether the pull request is still open.
func (p PullRequest) IsOpen() bool {
	return p.State == "open"
}

// Issue is a snapshot of an open issue. Pull requests are never represented as Issues.
type Issue struct {
	Number    int
	Title     string
	Author    string
	CreatedAt time.Time
}

// Kind distinguishes the item an Entry was built from.
type Kind int

const (
	KindPullRequest Kind = iota
	KindIssue
)

// Entry is a single line of the weekly report.
type Entry struct {
	Kind      Kind
	Number    int
	Title     string
	Author    string
	CreatedAt time.Time
	MergedAt  *time.Time
}

// Bucket identifies one section of the report.
type Bucket int

const (
	MergedThisWeek Bucket = iota
	WaitingReview
	InProgress
	IssuesOpened
)

// Buckets lists every bucket in rendering order.
var Buckets = []Bucket{MergedThisWeek, WaitingReview, InProgress, IssuesOpened}

func (b Bucket) String() string {
	switch b {
	case MergedThisWeek:
		return "merged"
	case WaitingReview:
		return "waiting_review"
	case InProgress:
		return "in_progress"
	case IssuesOpened:
		return "issues_opened"
	}
	return "unknown"
}

// Report holds the classified entries of one run.
// Each bucket keeps the order in which items were classified.
type Report struct {
	Window  DateWindow
	entries [4][]Entry
}

// NewReport creates an empty report for the given window.
func NewReport(window DateWindow) *Report {
	return &Report{Window: window}
}

// Add appends an entry to a bucket.
func (r *Report) Add(b Bucket, e Entry) {
	r.entries[b] = append(r.entries[b], e)
}

// Entries returns the entries of a bucket in classification order.
func (r *Report) Entries(b Bucket) []Entry {
	return r.entries[b]
}

// IsEmpty reports whether no bucket has any entry.
func (r *Report) IsEmpty() bool {
	for _, b := range Buckets {
		if len(r.entries[b]) > 0 {
			return false
		}
	}
	return true
}
