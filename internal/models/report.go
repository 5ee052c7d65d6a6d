package models

import (
	"time"
)

// KPISet holds the scalar metrics for a repository window.
//
// The averages use a zero sentinel when no item qualifies; consumers must
// check the matching sample count before treating the average as a genuine
// zero-duration result.
type KPISet struct {
	TotalIssues  int `json:"total_issues"`
	OpenIssues   int `json:"open_issues"`
	ClosedIssues int `json:"closed_issues"`
	TotalPRs     int `json:"total_prs"`
	OpenPRs      int `json:"open_prs"`
	MergedPRs    int `json:"merged_prs"`

	AvgIssueResolutionDays float64 `json:"avg_issue_resolution_days"`
	ResolutionSamples      int     `json:"resolution_samples"`
	AvgPRMergeDays         float64 `json:"avg_pr_merge_days"`
	MergeSamples           int     `json:"merge_samples"`
}

// ThroughputRow counts closed issues and merged PRs within one time bucket.
type ThroughputRow struct {
	Period       string `json:"period"`
	ClosedIssues int    `json:"closed_issues"`
	MergedPRs    int    `json:"merged_prs"`
}

// CycleTimeRow is the average creation-to-merge duration for PRs merged
// within one time bucket.
type CycleTimeRow struct {
	Period           string  `json:"period"`
	AvgCycleTimeDays float64 `json:"avg_cycle_time_days"`
}

// TimelineRow counts items created on one calendar date.
type TimelineRow struct {
	Date   string `json:"date"`
	Issues int    `json:"issues"`
	PRs    int    `json:"prs"`
	Total  int    `json:"total"`
}

// LabelCount is the number of items carrying one label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LeaderboardRow is one contributor's activity across both collections.
type LeaderboardRow struct {
	Contributor string `json:"contributor"`
	Issues      int    `json:"issues"`
	PRs         int    `json:"prs"`
	Total       int    `json:"total"`
}

// LinkageRow records the issues a pull request references in its body.
// LinkedIssues is a comma-joined list sorted numerically ascending.
type LinkageRow struct {
	PRNumber     int    `json:"pr_number"`
	PRTitle      string `json:"pr_title"`
	LinkedIssues string `json:"linked_issues"`
}

// AgingRow counts open issues within one age bucket.
type AgingRow struct {
	AgeBucket string `json:"age_bucket"`
	Count     int    `json:"count"`
}

// Report bundles every aggregate table computed for one repository window.
type Report struct {
	Repository  string    `json:"repository"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	GeneratedAt time.Time `json:"generated_at"`

	KPIs        KPISet           `json:"kpis"`
	Throughput  []ThroughputRow  `json:"throughput"`
	CycleTime   []CycleTimeRow   `json:"cycle_time"`
	Timeline    []TimelineRow    `json:"timeline"`
	Labels      []LabelCount     `json:"labels"`
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	Aging       []AgingRow       `json:"aging"`
	Linkage     []LinkageRow     `json:"linkage"`

	Issues []Issue       `json:"issues"`
	Pulls  []PullRequest `json:"pulls"`
}
