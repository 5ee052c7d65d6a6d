package metrics

import (
	"sort"

	"github-pulse/internal/models"
)

// LabelFrequency tallies every label occurrence across both collections.
// Labels are a set per item, so one item cannot double count. Rows are sorted
// by count descending; ties keep first-seen order, so repeated runs over the
// same input produce identical output.
func LabelFrequency(issues []models.Issue, pulls []models.PullRequest) []models.LabelCount {
	counts := make(map[string]int)
	var order []string

	tally := func(labels []string) {
		for _, label := range labels {
			if _, ok := counts[label]; !ok {
				order = append(order, label)
			}
			counts[label]++
		}
	}
	for _, issue := range issues {
		tally(issue.Labels)
	}
	for _, pull := range pulls {
		tally(pull.Labels)
	}

	rows := make([]models.LabelCount, 0, len(order))
	for _, label := range order {
		rows = append(rows, models.LabelCount{Label: label, Count: counts[label]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// Leaderboard produces one row per distinct contributor seen in either
// collection, with per-collection counts and their total. The two tallies are
// built independently and merged once, so the result does not depend on scan
// order. Rows are sorted by total descending with a stable first-seen
// tie-break.
func Leaderboard(issues []models.Issue, pulls []models.PullRequest) []models.LeaderboardRow {
	issueCounts := make(map[string]int)
	pullCounts := make(map[string]int)
	var order []string
	seen := make(map[string]bool)

	for _, issue := range issues {
		if !seen[issue.User] {
			seen[issue.User] = true
			order = append(order, issue.User)
		}
		issueCounts[issue.User]++
	}
	for _, pull := range pulls {
		if !seen[pull.User] {
			seen[pull.User] = true
			order = append(order, pull.User)
		}
		pullCounts[pull.User]++
	}

	rows := make([]models.LeaderboardRow, 0, len(order))
	for _, user := range order {
		rows = append(rows, models.LeaderboardRow{
			Contributor: user,
			Issues:      issueCounts[user],
			PRs:         pullCounts[user],
			Total:       issueCounts[user] + pullCounts[user],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}
