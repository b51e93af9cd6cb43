package usecase

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/weekly-report/internal/domain"
)

// Summary holds counts and timing statistics of a report.
type Summary struct {
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Counts      map[string]int `json:"counts"`
	// Hours from creation to merge of the merged pull requests.
	MergeLeadTimeHours *Distribution `json:"merge_lead_time_hours,omitempty"`
	// Median hours pull requests waiting for review have been open at the end of the window.
	MedianReviewWaitHours *float64 `json:"median_review_wait_hours,omitempty"`
}

// Distribution summarizes a set of durations.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summarize computes a Summary of report. Statistics are omitted for empty buckets.
func Summarize(report *domain.Report) Summary {
	s := Summary{
		WindowStart: report.Window.Start,
		WindowEnd:   report.Window.End,
		Counts:      make(map[string]int, len(domain.Buckets)),
	}
	for _, b := range domain.Buckets {
		s.Counts[b.String()] = len(report.Entries(b))
	}

	var leadTimes stats.Float64Data
	for _, e := range report.Entries(domain.MergedThisWeek) {
		if e.MergedAt != nil {
			leadTimes = append(leadTimes, e.MergedAt.Sub(e.CreatedAt).Hours())
		}
	}
	if len(leadTimes) > 0 {
		mean, _ := stats.Mean(leadTimes)
		median, _ := stats.Median(leadTimes)
		maxHours, _ := stats.Max(leadTimes)
		s.MergeLeadTimeHours = &Distribution{
			Mean:   round2(mean),
			Median: round2(median),
			Max:    round2(maxHours),
		}
	}

	var waits stats.Float64Data
	for _, e := range report.Entries(domain.WaitingReview) {
		waits = append(waits, report.Window.End.Sub(e.CreatedAt).Hours())
	}
	if median, err := stats.Median(waits); err == nil {
		median = round2(median)
		s.MedianReviewWaitHours = &median
	}
	return s
}

func round2(v float64) float64 {
	r, _ := stats.Round(v, 2)
	return r
}
