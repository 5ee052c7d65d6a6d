package metrics

import (
	"testing"

	"github-pulse/internal/models"

	"github.com/stretchr/testify/require"
)

func bodyPull(t *testing.T, number int, title, body string) models.PullRequest {
	t.Helper()
	return models.PullRequest{
		Number:    number,
		Title:     title,
		State:     models.StateOpen,
		CreatedAt: mustTime(t, "2024-01-01T00:00:00Z"),
		Body:      body,
	}
}

func TestLinkageDeduplicatesAndSortsNumerically(t *testing.T) {
	pulls := []models.PullRequest{
		bodyPull(t, 5, "retry fetch", "Fixes #12 and relates to #7, also see #12"),
	}

	rows := Linkage(pulls)
	require.Equal(t, []models.LinkageRow{
		{PRNumber: 5, PRTitle: "retry fetch", LinkedIssues: "7,12"},
	}, rows)
}

func TestLinkageNumericNotLexicalOrder(t *testing.T) {
	rows := Linkage([]models.PullRequest{
		bodyPull(t, 1, "cleanup", "see #10 and #9"),
	})
	require.Len(t, rows, 1)
	require.Equal(t, "9,10", rows[0].LinkedIssues)
}

func TestLinkageClosingVerbs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "closes", body: "Closes #3", want: "3"},
		{name: "fix", body: "fix #21 before release", want: "21"},
		{name: "resolves upper", body: "RESOLVES #8", want: "8"},
		{name: "related to", body: "related to #44", want: "44"},
		{name: "bare reference", body: "follow-up of #2", want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Linkage([]models.PullRequest{bodyPull(t, 9, "x", tt.body)})
			require.Len(t, rows, 1)
			require.Equal(t, tt.want, rows[0].LinkedIssues)
		})
	}
}

func TestLinkageSkipsPRsWithoutReferences(t *testing.T) {
	pulls := []models.PullRequest{
		bodyPull(t, 1, "no refs", "just a refactor"),
		bodyPull(t, 2, "empty body", ""),
		bodyPull(t, 3, "hash without digits", "see the # section"),
		bodyPull(t, 4, "real ref", "fixes #6"),
	}

	rows := Linkage(pulls)
	require.Len(t, rows, 1)
	require.Equal(t, 4, rows[0].PRNumber)
}

func TestLinkageEmptyInput(t *testing.T) {
	require.Empty(t, Linkage(nil))
}
