package metrics

import (
	"sort"
	"time"

	"github-pulse/internal/models"
)

// Throughput counts closed issues and merged PRs per bucket over [start, end].
// Closure and merge timestamps decide membership, bounds inclusive. The two
// counts are tallied independently and outer-merged, so a bucket with only one
// kind of event still appears with the other count at zero. Rows are ordered
// by period ascending.
func Throughput(issues []models.Issue, pulls []models.PullRequest, start, end time.Time) []models.ThroughputRow {
	granularity := PeriodFor(start, end)

	closedCounts := make(map[time.Time]int)
	for _, issue := range issues {
		if issue.State != models.StateClosed || issue.ClosedAt == nil {
			continue
		}
		if !within(*issue.ClosedAt, start, end) {
			continue
		}
		closedCounts[bucketStart(*issue.ClosedAt, granularity)]++
	}

	mergedCounts := make(map[time.Time]int)
	for _, pull := range pulls {
		if !pull.Merged || pull.MergedAt == nil {
			continue
		}
		if !within(*pull.MergedAt, start, end) {
			continue
		}
		mergedCounts[bucketStart(*pull.MergedAt, granularity)]++
	}

	rows := make([]models.ThroughputRow, 0, len(closedCounts)+len(mergedCounts))
	for _, period := range sortedPeriods(closedCounts, mergedCounts) {
		rows = append(rows, models.ThroughputRow{
			Period:       formatPeriod(period),
			ClosedIssues: closedCounts[period],
			MergedPRs:    mergedCounts[period],
		})
	}
	return rows
}

// CycleTime reports the mean creation-to-merge duration per bucket for PRs
// created at or after start and merged at or before end. PRs are grouped by
// the bucket containing their merge time. Buckets without merges are absent;
// there is no average of nothing.
func CycleTime(pulls []models.PullRequest, start, end time.Time) []models.CycleTimeRow {
	granularity := PeriodFor(start, end)

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, pull := range pulls {
		if !pull.Merged || pull.MergedAt == nil {
			continue
		}
		if pull.CreatedAt.Before(start) || pull.MergedAt.After(end) {
			continue
		}
		period := bucketStart(*pull.MergedAt, granularity)
		sums[period] += durationDays(pull.CreatedAt, *pull.MergedAt)
		counts[period]++
	}

	rows := make([]models.CycleTimeRow, 0, len(counts))
	for _, period := range sortedPeriods(counts, nil) {
		rows = append(rows, models.CycleTimeRow{
			Period:           formatPeriod(period),
			AvgCycleTimeDays: sums[period] / float64(counts[period]),
		})
	}
	return rows
}

// Timeline counts items by creation date. Unlike the range-adaptive series it
// is always daily and keyed on creation rather than closure or merge; dates on
// which nothing was created have no row.
func Timeline(issues []models.Issue, pulls []models.PullRequest) []models.TimelineRow {
	issueCounts := make(map[time.Time]int)
	for _, issue := range issues {
		issueCounts[dateOf(issue.CreatedAt)]++
	}

	pullCounts := make(map[time.Time]int)
	for _, pull := range pulls {
		pullCounts[dateOf(pull.CreatedAt)]++
	}

	rows := make([]models.TimelineRow, 0, len(issueCounts)+len(pullCounts))
	for _, date := range sortedPeriods(issueCounts, pullCounts) {
		rows = append(rows, models.TimelineRow{
			Date:   formatPeriod(date),
			Issues: issueCounts[date],
			PRs:    pullCounts[date],
			Total:  issueCounts[date] + pullCounts[date],
		})
	}
	return rows
}

// sortedPeriods returns the union of the keys of both maps in ascending
// order. The second map may be nil.
func sortedPeriods(a map[time.Time]int, b map[time.Time]int) []time.Time {
	seen := make(map[time.Time]bool, len(a)+len(b))
	periods := make([]time.Time, 0, len(a)+len(b))
	for period := range a {
		if !seen[period] {
			seen[period] = true
			periods = append(periods, period)
		}
	}
	for period := range b {
		if !seen[period] {
			seen[period] = true
			periods = append(periods, period)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}
