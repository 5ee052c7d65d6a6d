package metrics

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github-pulse/internal/models"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.UTC()
}

func timePtr(v time.Time) *time.Time { return &v }

func TestNormalizeIssueDefaults(t *testing.T) {
	issues, pulls, err := Normalize([]Raw{{
		"number":     7,
		"state":      "open",
		"created_at": "2024-03-01T12:00:00Z",
	}}, nil)
	require.NoError(t, err)
	require.Empty(t, pulls)
	require.Len(t, issues, 1)

	issue := issues[0]
	require.Equal(t, 7, issue.Number)
	require.Equal(t, models.UnknownUser, issue.User)
	require.Nil(t, issue.ClosedAt)
	require.Empty(t, issue.Title)
	require.Equal(t, []string{}, issue.Labels)
	require.Zero(t, issue.Comments)
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	tests := []struct {
		name  string
		raw   Raw
		field string
	}{
		{
			name:  "missing number",
			raw:   Raw{"state": "open", "created_at": "2024-03-01T12:00:00Z"},
			field: "number",
		},
		{
			name:  "missing state",
			raw:   Raw{"number": 1, "created_at": "2024-03-01T12:00:00Z"},
			field: "state",
		},
		{
			name:  "missing created_at",
			raw:   Raw{"number": 1, "state": "open"},
			field: "created_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize([]Raw{tt.raw}, nil)
			require.ErrorIs(t, err, ErrMissingField)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			require.Equal(t, tt.field, fieldErr.Field)
			require.Equal(t, 0, fieldErr.Index)
			require.Equal(t, "issue", fieldErr.Entity)
		})
	}
}

func TestNormalizeMalformedTimestamp(t *testing.T) {
	_, _, err := Normalize(nil, []Raw{{
		"number":     2,
		"state":      "closed",
		"created_at": "yesterdayish",
	}})
	require.ErrorIs(t, err, ErrBadField)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "created_at", fieldErr.Field)
	require.Equal(t, "pull request", fieldErr.Entity)
}

func TestNormalizeStripsTimezoneOffset(t *testing.T) {
	issues, _, err := Normalize([]Raw{{
		"number":     3,
		"state":      "open",
		"created_at": "2024-03-01T10:30:00+05:00",
	}}, nil)
	require.NoError(t, err)

	// The clock reading survives; the offset is dropped, not converted.
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.True(t, issues[0].CreatedAt.Equal(want))
}

func TestNormalizeJSONDecodedRecord(t *testing.T) {
	var raw Raw
	payload := `{
		"number": 42,
		"title": "flaky test",
		"state": "closed",
		"created_at": "2024-01-02T08:00:00Z",
		"closed_at": "2024-01-04T08:00:00Z",
		"user": "alice",
		"labels": ["bug", "ci"],
		"comments": 3
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	issues, _, err := Normalize([]Raw{raw}, nil)
	require.NoError(t, err)

	issue := issues[0]
	require.Equal(t, 42, issue.Number)
	require.Equal(t, "alice", issue.User)
	require.Equal(t, []string{"bug", "ci"}, issue.Labels)
	require.Equal(t, 3, issue.Comments)
	require.NotNil(t, issue.ClosedAt)
	require.True(t, issue.ClosedAt.Equal(mustTime(t, "2024-01-04T08:00:00Z")))
}

func TestNormalizePullFields(t *testing.T) {
	_, pulls, err := Normalize(nil, []Raw{{
		"number":          11,
		"title":           "add retry",
		"state":           "closed",
		"created_at":      "2024-02-01T00:00:00Z",
		"closed_at":       "2024-02-03T00:00:00Z",
		"merged_at":       "2024-02-03T00:00:00Z",
		"merged":          true,
		"user":            "bob",
		"labels":          []string{"enhancement"},
		"comments":        1,
		"review_comments": 4,
		"body":            "Fixes #9",
	}})
	require.NoError(t, err)
	require.Len(t, pulls, 1)

	pull := pulls[0]
	require.True(t, pull.Merged)
	require.NotNil(t, pull.MergedAt)
	require.Equal(t, 4, pull.ReviewComments)
	require.Equal(t, "Fixes #9", pull.Body)
}

func TestNormalizeRoundTripIsNoOp(t *testing.T) {
	rawIssues := []Raw{{
		"number":     1,
		"title":      "panic on shutdown",
		"state":      "closed",
		"created_at": "2024-05-01T09:00:00Z",
		"closed_at":  "2024-05-02T09:00:00Z",
		"user":       "carol",
		"labels":     []string{"bug"},
		"comments":   2,
	}}
	rawPulls := []Raw{{
		"number":     2,
		"title":      "fix shutdown panic",
		"state":      "closed",
		"created_at": "2024-05-01T10:00:00Z",
		"merged_at":  "2024-05-02T10:00:00Z",
		"merged":     true,
		"user":       "carol",
		"body":       "Closes #1",
	}}

	issues, pulls, err := Normalize(rawIssues, rawPulls)
	require.NoError(t, err)

	// Canonical output fed back through the normalizer must come out unchanged.
	againIssues := make([]Raw, len(issues))
	for i, issue := range issues {
		againIssues[i] = IssueRaw(issue)
	}
	againPulls := make([]Raw, len(pulls))
	for i, pull := range pulls {
		againPulls[i] = PullRaw(pull)
	}

	issues2, pulls2, err := Normalize(againIssues, againPulls)
	require.NoError(t, err)
	require.Equal(t, issues, issues2)
	require.Equal(t, pulls, pulls2)
}

func TestNormalizeErrorIsNotRecoverable(t *testing.T) {
	// One bad record fails the whole batch; partial output would hide the
	// data-integrity problem.
	good := Raw{"number": 1, "state": "open", "created_at": "2024-03-01T12:00:00Z"}
	bad := Raw{"state": "open", "created_at": "2024-03-01T12:00:00Z"}

	issues, pulls, err := Normalize([]Raw{good, bad}, nil)
	require.Error(t, err)
	require.Nil(t, issues)
	require.Nil(t, pulls)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	require.Equal(t, 1, fieldErr.Index)
}
