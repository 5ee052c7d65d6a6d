package models

import (
	"time"
)

// Issue represents a normalized GitHub issue (pull requests excluded)
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	User      string     `json:"user"`
	Labels    []string   `json:"labels"`
	Comments  int        `json:"comments"`
}

// PullRequest represents a normalized GitHub pull request
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	MergedAt  *time.Time `json:"merged_at"`
	Merged    bool       `json:"merged"`
	User      string     `json:"user"`
	Labels    []string   `json:"labels"`
	Comments  int        `json:"comments"`
	// ReviewComments is carried for forward compatibility; no aggregate
	// consumes it yet.
	ReviewComments int    `json:"review_comments"`
	Body           string `json:"body"`
}

// Issue and pull request states as reported by the GitHub API.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// UnknownUser is the sentinel login used when the creator account is unavailable.
const UnknownUser = "Unknown"
