package metrics

import (
	"time"

	"github-pulse/internal/models"
)

// Age bucket boundaries in days.
const (
	agingWeek  = 7
	agingMonth = 30
)

var agingBuckets = []string{"0-7 days", "7-30 days", "30+ days"}

// Aging classifies open issues by elapsed age since creation relative to now.
// All three buckets are always present, in fixed order, even when some counts
// are zero.
func Aging(issues []models.Issue, now time.Time) []models.AgingRow {
	counts := make(map[string]int, len(agingBuckets))
	for _, issue := range issues {
		if issue.State != models.StateOpen {
			continue
		}
		counts[ageBucket(durationDays(issue.CreatedAt, now))]++
	}

	rows := make([]models.AgingRow, 0, len(agingBuckets))
	for _, bucket := range agingBuckets {
		rows = append(rows, models.AgingRow{AgeBucket: bucket, Count: counts[bucket]})
	}
	return rows
}

func ageBucket(ageDays float64) string {
	switch {
	case ageDays <= agingWeek:
		return agingBuckets[0]
	case ageDays <= agingMonth:
		return agingBuckets[1]
	default:
		return agingBuckets[2]
	}
}
