package api

import (
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/require"

	"github-pulse/internal/metrics"
	"github-pulse/internal/models"
)

func TestIssueRawNormalizes(t *testing.T) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, 2)

	issue := &github.Issue{
		Number:    github.Int(12),
		Title:     github.String("crash on launch"),
		State:     github.String("closed"),
		CreatedAt: &github.Timestamp{Time: created},
		ClosedAt:  &github.Timestamp{Time: closed},
		User:      &github.User{Login: github.String("alice")},
		Labels:    []*github.Label{{Name: github.String("bug")}},
		Comments:  github.Int(2),
	}

	issues, _, err := metrics.Normalize([]metrics.Raw{IssueRaw(issue)}, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	got := issues[0]
	require.Equal(t, 12, got.Number)
	require.Equal(t, models.StateClosed, got.State)
	require.Equal(t, "alice", got.User)
	require.Equal(t, []string{"bug"}, got.Labels)
	require.NotNil(t, got.ClosedAt)
	require.True(t, got.ClosedAt.Equal(closed))
}

func TestIssueRawMissingUser(t *testing.T) {
	issue := &github.Issue{
		Number:    github.Int(1),
		State:     github.String("open"),
		CreatedAt: &github.Timestamp{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	issues, _, err := metrics.Normalize([]metrics.Raw{IssueRaw(issue)}, nil)
	require.NoError(t, err)
	require.Equal(t, models.UnknownUser, issues[0].User)
}

func TestPullRawNormalizes(t *testing.T) {
	created := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	merged := created.Add(36 * time.Hour)

	pr := &github.PullRequest{
		Number:         github.Int(34),
		Title:          github.String("add caching"),
		State:          github.String("closed"),
		CreatedAt:      &github.Timestamp{Time: created},
		ClosedAt:       &github.Timestamp{Time: merged},
		MergedAt:       &github.Timestamp{Time: merged},
		Merged:         github.Bool(true),
		Body:           github.String("Closes #12"),
		User:           &github.User{Login: github.String("bob")},
		Labels:         []*github.Label{{Name: github.String("perf")}},
		Comments:       github.Int(1),
		ReviewComments: github.Int(5),
	}

	_, pulls, err := metrics.Normalize(nil, []metrics.Raw{PullRaw(pr)})
	require.NoError(t, err)
	require.Len(t, pulls, 1)

	got := pulls[0]
	require.True(t, got.Merged)
	require.NotNil(t, got.MergedAt)
	require.Equal(t, 5, got.ReviewComments)
	require.Equal(t, "Closes #12", got.Body)

	rows := metrics.Linkage(pulls)
	require.Len(t, rows, 1)
	require.Equal(t, "12", rows[0].LinkedIssues)
}
