// Package metrics transforms raw issue and pull request records into the
// aggregate tables behind the dashboard: scalar KPIs, time-bucketed series,
// categorical tallies and PR-to-issue linkage. Every function is pure; inputs
// are never mutated.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github-pulse/internal/models"
)

// Raw is a loosely-typed record as handed over by a fetch client, one map per
// issue or pull request. Timestamp values may be time.Time or RFC 3339
// strings; numeric values may arrive as any of the types JSON decoding
// produces.
type Raw map[string]any

var (
	// ErrMissingField signals a required field absent from a raw record.
	ErrMissingField = errors.New("missing required field")
	// ErrBadField signals a field whose value could not be interpreted.
	ErrBadField = errors.New("malformed field")
)

// FieldError identifies the record and field a normalization failure
// originated from.
type FieldError struct {
	Entity string
	Index  int
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s record %d: field %q: %v", e.Entity, e.Index, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Normalize converts raw issue and pull request records into the uniform
// typed collections every aggregate consumes. Optional fields default rather
// than fail; a missing required field (number, created_at, state) aborts with
// a FieldError. Feeding the output back through Normalize is a no-op.
func Normalize(rawIssues, rawPulls []Raw) ([]models.Issue, []models.PullRequest, error) {
	issues := make([]models.Issue, 0, len(rawIssues))
	for i, r := range rawIssues {
		issue, err := normalizeIssue(i, r)
		if err != nil {
			return nil, nil, err
		}
		issues = append(issues, issue)
	}

	pulls := make([]models.PullRequest, 0, len(rawPulls))
	for i, r := range rawPulls {
		pull, err := normalizePull(i, r)
		if err != nil {
			return nil, nil, err
		}
		pulls = append(pulls, pull)
	}

	return issues, pulls, nil
}

func normalizeIssue(idx int, r Raw) (models.Issue, error) {
	rec := recordReader{entity: "issue", index: idx, raw: r}

	issue := models.Issue{
		Number:    rec.requiredInt("number"),
		Title:     rec.optionalString("title"),
		State:     rec.requiredString("state"),
		CreatedAt: rec.requiredTime("created_at"),
		ClosedAt:  rec.optionalTime("closed_at"),
		User:      rec.login("user"),
		Labels:    rec.labels("labels"),
		Comments:  rec.optionalInt("comments"),
	}
	return issue, rec.err
}

func normalizePull(idx int, r Raw) (models.PullRequest, error) {
	rec := recordReader{entity: "pull request", index: idx, raw: r}

	pull := models.PullRequest{
		Number:         rec.requiredInt("number"),
		Title:          rec.optionalString("title"),
		State:          rec.requiredString("state"),
		CreatedAt:      rec.requiredTime("created_at"),
		ClosedAt:       rec.optionalTime("closed_at"),
		MergedAt:       rec.optionalTime("merged_at"),
		Merged:         rec.optionalBool("merged"),
		User:           rec.login("user"),
		Labels:         rec.labels("labels"),
		Comments:       rec.optionalInt("comments"),
		ReviewComments: rec.optionalInt("review_comments"),
		Body:           rec.optionalString("body"),
	}
	return pull, rec.err
}

// IssueRaw renders a normalized issue back into record form. Together with
// Normalize it closes the canonicalization round trip.
func IssueRaw(i models.Issue) Raw {
	r := Raw{
		"number":     i.Number,
		"title":      i.Title,
		"state":      i.State,
		"created_at": i.CreatedAt,
		"user":       i.User,
		"labels":     i.Labels,
		"comments":   i.Comments,
	}
	if i.ClosedAt != nil {
		r["closed_at"] = *i.ClosedAt
	}
	return r
}

// PullRaw renders a normalized pull request back into record form.
func PullRaw(p models.PullRequest) Raw {
	r := Raw{
		"number":          p.Number,
		"title":           p.Title,
		"state":           p.State,
		"created_at":      p.CreatedAt,
		"merged":          p.Merged,
		"user":            p.User,
		"labels":          p.Labels,
		"comments":        p.Comments,
		"review_comments": p.ReviewComments,
		"body":            p.Body,
	}
	if p.ClosedAt != nil {
		r["closed_at"] = *p.ClosedAt
	}
	if p.MergedAt != nil {
		r["merged_at"] = *p.MergedAt
	}
	return r
}

// recordReader accumulates the first conversion error while extracting fields
// from one raw record.
type recordReader struct {
	entity string
	index  int
	raw    Raw
	err    error
}

func (rr *recordReader) fail(field string, err error) {
	if rr.err == nil {
		rr.err = &FieldError{Entity: rr.entity, Index: rr.index, Field: field, Err: err}
	}
}

func (rr *recordReader) requiredInt(field string) int {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		rr.fail(field, ErrMissingField)
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		rr.fail(field, fmt.Errorf("%w: expected integer, got %T", ErrBadField, v))
		return 0
	}
	return n
}

func (rr *recordReader) optionalInt(field string) int {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		rr.fail(field, fmt.Errorf("%w: expected integer, got %T", ErrBadField, v))
		return 0
	}
	return n
}

func (rr *recordReader) requiredString(field string) string {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		rr.fail(field, ErrMissingField)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		rr.fail(field, fmt.Errorf("%w: expected string, got %T", ErrBadField, v))
		return ""
	}
	return s
}

func (rr *recordReader) optionalString(field string) string {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	rr.fail(field, fmt.Errorf("%w: expected string, got %T", ErrBadField, v))
	return ""
}

func (rr *recordReader) optionalBool(field string) bool {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		rr.fail(field, fmt.Errorf("%w: expected bool, got %T", ErrBadField, v))
		return false
	}
	return b
}

func (rr *recordReader) requiredTime(field string) time.Time {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		rr.fail(field, ErrMissingField)
		return time.Time{}
	}
	t, err := asTime(v)
	if err != nil {
		rr.fail(field, err)
		return time.Time{}
	}
	return t
}

func (rr *recordReader) optionalTime(field string) *time.Time {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return nil
	}
	t, err := asTime(v)
	if err != nil {
		rr.fail(field, err)
		return nil
	}
	return &t
}

func (rr *recordReader) login(field string) string {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return models.UnknownUser
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return models.UnknownUser
	}
	return s
}

func (rr *recordReader) labels(field string) []string {
	v, ok := rr.raw[field]
	if !ok || v == nil {
		return []string{}
	}
	switch l := v.(type) {
	case []string:
		out := make([]string, len(l))
		copy(out, l)
		return out
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				rr.fail(field, fmt.Errorf("%w: expected string label, got %T", ErrBadField, item))
				return []string{}
			}
			out = append(out, s)
		}
		return out
	default:
		rr.fail(field, fmt.Errorf("%w: expected label list, got %T", ErrBadField, v))
		return []string{}
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// asTime interprets a raw timestamp value and strips any offset, so all
// downstream arithmetic happens in one consistent timezone-naive frame.
func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return stripOffset(t), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("%w: nil timestamp", ErrBadField)
		}
		return stripOffset(*t), nil
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return stripOffset(parsed), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unparsable timestamp %q", ErrBadField, t)
	default:
		return time.Time{}, fmt.Errorf("%w: expected timestamp, got %T", ErrBadField, v)
	}
}

// stripOffset drops the location while keeping the clock reading, rather than
// converting between zones.
func stripOffset(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
