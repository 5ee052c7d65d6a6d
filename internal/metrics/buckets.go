package metrics

import (
	"time"
)

// Granularity is the bucket width used by the range-adaptive series.
type Granularity string

// Supported bucket widths.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

const secondsPerDay = 86400.0

// PeriodFor chooses the bucket width for a date window. Throughput and cycle
// time both use this rule, so two charts over the same window are always
// time-aligned.
func PeriodFor(start, end time.Time) Granularity {
	days := int(end.Sub(start).Hours() / 24)
	switch {
	case days <= 7:
		return Daily
	case days <= 90:
		return Weekly
	default:
		return Monthly
	}
}

// bucketStart truncates a timestamp to the start of its bucket: midnight for
// daily, the ISO week's Monday for weekly, the first of the month for monthly.
func bucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case Weekly:
		day := dateOf(t)
		offset := (int(day.Weekday()) + 6) % 7 // Monday-based
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return dateOf(t)
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatPeriod(t time.Time) string {
	return t.Format("2006-01-02")
}

func durationDays(from, to time.Time) float64 {
	return to.Sub(from).Seconds() / secondsPerDay
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
