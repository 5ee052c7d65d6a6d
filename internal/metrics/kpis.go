package metrics

import (
	"github-pulse/internal/models"
)

// ComputeKPIs derives the scalar metrics for a pair of normalized
// collections. Empty inputs yield zero counts, never an error.
//
// The averages report 0 when no item qualifies; ResolutionSamples and
// MergeSamples carry the qualifying counts so callers can tell the sentinel
// apart from a genuine zero-duration mean.
func ComputeKPIs(issues []models.Issue, pulls []models.PullRequest) models.KPISet {
	kpis := models.KPISet{
		TotalIssues: len(issues),
		TotalPRs:    len(pulls),
	}

	var resolutionDays float64
	for _, issue := range issues {
		switch issue.State {
		case models.StateOpen:
			kpis.OpenIssues++
		case models.StateClosed:
			kpis.ClosedIssues++
		}
		if issue.State == models.StateClosed && issue.ClosedAt != nil {
			resolutionDays += durationDays(issue.CreatedAt, *issue.ClosedAt)
			kpis.ResolutionSamples++
		}
	}
	if kpis.ResolutionSamples > 0 {
		kpis.AvgIssueResolutionDays = resolutionDays / float64(kpis.ResolutionSamples)
	}

	var mergeDays float64
	for _, pull := range pulls {
		if pull.State == models.StateOpen {
			kpis.OpenPRs++
		}
		if pull.Merged {
			kpis.MergedPRs++
			if pull.MergedAt != nil {
				mergeDays += durationDays(pull.CreatedAt, *pull.MergedAt)
				kpis.MergeSamples++
			}
		}
	}
	if kpis.MergeSamples > 0 {
		kpis.AvgPRMergeDays = mergeDays / float64(kpis.MergeSamples)
	}

	return kpis
}
