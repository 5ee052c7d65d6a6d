// Package api fetches raw issue and pull request records from GitHub.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github-pulse/internal/metrics"
)

// Client fetches repository activity over the GitHub REST API.
type Client struct {
	client *github.Client
}

// NewClient creates a REST API client. Responses are cached in memory so
// repeated dashboard loads within a window do not re-spend rate limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	if token != "" {
		cacheTransport.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: cacheTransport}
	return &Client{client: github.NewClient(httpClient)}
}

// RepositoryName returns the canonical full name of a repository, verifying
// it exists and the token can see it.
func (c *Client) RepositoryName(ctx context.Context, owner, name string) (string, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	return repo.GetFullName(), nil
}

// FetchWindow returns raw records for every issue and pull request created
// within [start, end], already partitioned. The GitHub issues listing
// represents PRs as a superset of issues; PR-flagged items are re-fetched as
// full pull requests so the merge fields and body are present.
func (c *Client) FetchWindow(ctx context.Context, owner, name string, start, end time.Time) ([]metrics.Raw, []metrics.Raw, error) {
	var issues, pulls []metrics.Raw

	opts := &github.IssueListByRepoOptions{
		State:     "all",
		Since:     start,
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		page, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list issues: %w", err)
		}

		for _, item := range page {
			created := item.GetCreatedAt().Time
			if created.Before(start) || created.After(end) {
				continue
			}

			if item.IsPullRequest() {
				pr, _, err := c.client.PullRequests.Get(ctx, owner, name, item.GetNumber())
				if err != nil {
					return nil, nil, fmt.Errorf("failed to get pull request #%d: %w", item.GetNumber(), err)
				}
				pulls = append(pulls, PullRaw(pr))
			} else {
				issues = append(issues, IssueRaw(item))
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, pulls, nil
}

// IssueRaw converts a GitHub issue to a raw record.
func IssueRaw(issue *github.Issue) metrics.Raw {
	r := metrics.Raw{
		"number":     issue.GetNumber(),
		"title":      issue.GetTitle(),
		"state":      issue.GetState(),
		"created_at": issue.GetCreatedAt().Time,
		"labels":     labelNames(issue.Labels),
		"comments":   issue.GetComments(),
	}
	if issue.ClosedAt != nil {
		r["closed_at"] = issue.ClosedAt.Time
	}
	if issue.User != nil {
		r["user"] = issue.User.GetLogin()
	}
	return r
}

// PullRaw converts a GitHub pull request to a raw record.
func PullRaw(pr *github.PullRequest) metrics.Raw {
	r := metrics.Raw{
		"number":          pr.GetNumber(),
		"title":           pr.GetTitle(),
		"state":           pr.GetState(),
		"created_at":      pr.GetCreatedAt().Time,
		"merged":          pr.GetMerged(),
		"body":            pr.GetBody(),
		"labels":          labelNames(pr.Labels),
		"comments":        pr.GetComments(),
		"review_comments": pr.GetReviewComments(),
	}
	if pr.ClosedAt != nil {
		r["closed_at"] = pr.ClosedAt.Time
	}
	if pr.MergedAt != nil {
		r["merged_at"] = pr.MergedAt.Time
	}
	if pr.User != nil {
		r["user"] = pr.User.GetLogin()
	}
	return r
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.GetName())
	}
	return names
}
