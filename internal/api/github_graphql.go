package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github-pulse/internal/metrics"
)

// GraphQLClient is an alternative fetcher using the GitHub GraphQL API. It
// produces the same raw records as the REST client but needs far fewer round
// trips on large repositories, since issues and pull requests arrive in bulk
// with their labels inlined.
type GraphQLClient struct {
	client *githubv4.Client
	log    *zap.SugaredLogger
}

// NewGraphQLClient creates a GraphQL client.
func NewGraphQLClient(token string, log *zap.SugaredLogger) *GraphQLClient {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	}
	httpClient := &http.Client{Transport: cacheTransport}
	return &GraphQLClient{client: githubv4.NewClient(httpClient), log: log}
}

type graphQLLabel struct {
	Name githubv4.String
}

type graphQLIssue struct {
	Number    githubv4.Int
	Title     githubv4.String
	State     githubv4.String
	CreatedAt githubv4.DateTime
	ClosedAt  *githubv4.DateTime
	Author    struct {
		Login githubv4.String
	}
	Labels struct {
		Nodes []graphQLLabel
	} `graphql:"labels(first: 50)"`
	Comments struct {
		TotalCount githubv4.Int
	}
}

type graphQLPullRequest struct {
	Number    githubv4.Int
	Title     githubv4.String
	State     githubv4.String
	Body      githubv4.String
	CreatedAt githubv4.DateTime
	ClosedAt  *githubv4.DateTime
	MergedAt  *githubv4.DateTime
	Merged    githubv4.Boolean
	Author    struct {
		Login githubv4.String
	}
	Labels struct {
		Nodes []graphQLLabel
	} `graphql:"labels(first: 50)"`
	Comments struct {
		TotalCount githubv4.Int
	}
	Reviews struct {
		TotalCount githubv4.Int
	}
}

type pageInfo struct {
	EndCursor   githubv4.String
	HasNextPage githubv4.Boolean
}

// FetchWindow returns raw records for issues and pull requests created within
// [start, end].
func (c *GraphQLClient) FetchWindow(ctx context.Context, owner, name string, start, end time.Time) ([]metrics.Raw, []metrics.Raw, error) {
	issues, err := c.fetchIssues(ctx, owner, name, start, end)
	if err != nil {
		return nil, nil, err
	}
	pulls, err := c.fetchPullRequests(ctx, owner, name, start, end)
	if err != nil {
		return nil, nil, err
	}
	return issues, pulls, nil
}

func (c *GraphQLClient) fetchIssues(ctx context.Context, owner, name string, start, end time.Time) ([]metrics.Raw, error) {
	var issues []metrics.Raw
	var cursor *githubv4.String

	for {
		var query struct {
			RateLimit struct {
				Remaining githubv4.Int
				ResetAt   githubv4.DateTime
			}
			Repository struct {
				Issues struct {
					Nodes    []graphQLIssue
					PageInfo pageInfo
				} `graphql:"issues(first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
			} `graphql:"repository(owner: $owner, name: $name)"`
		}

		variables := map[string]interface{}{
			"owner":  githubv4.String(owner),
			"name":   githubv4.String(name),
			"cursor": cursor,
		}

		if err := c.client.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("failed to query issues: %w", err)
		}
		c.logRateLimit(int(query.RateLimit.Remaining), query.RateLimit.ResetAt.Time)

		pastWindow := false
		for _, issue := range query.Repository.Issues.Nodes {
			created := issue.CreatedAt.Time
			if created.Before(start) {
				// Ordered by creation descending; everything after this
				// node is older than the window.
				pastWindow = true
				break
			}
			if created.After(end) {
				continue
			}
			issues = append(issues, issueRawFromGraphQL(issue))
		}

		if pastWindow || !bool(query.Repository.Issues.PageInfo.HasNextPage) {
			break
		}
		cursor = &query.Repository.Issues.PageInfo.EndCursor
	}

	return issues, nil
}

func (c *GraphQLClient) fetchPullRequests(ctx context.Context, owner, name string, start, end time.Time) ([]metrics.Raw, error) {
	var pulls []metrics.Raw
	var cursor *githubv4.String

	for {
		var query struct {
			Repository struct {
				PullRequests struct {
					Nodes    []graphQLPullRequest
					PageInfo pageInfo
				} `graphql:"pullRequests(first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
			} `graphql:"repository(owner: $owner, name: $name)"`
		}

		variables := map[string]interface{}{
			"owner":  githubv4.String(owner),
			"name":   githubv4.String(name),
			"cursor": cursor,
		}

		if err := c.client.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("failed to query pull requests: %w", err)
		}

		pastWindow := false
		for _, pull := range query.Repository.PullRequests.Nodes {
			created := pull.CreatedAt.Time
			if created.Before(start) {
				pastWindow = true
				break
			}
			if created.After(end) {
				continue
			}
			pulls = append(pulls, pullRawFromGraphQL(pull))
		}

		if pastWindow || !bool(query.Repository.PullRequests.PageInfo.HasNextPage) {
			break
		}
		cursor = &query.Repository.PullRequests.PageInfo.EndCursor
	}

	return pulls, nil
}

func (c *GraphQLClient) logRateLimit(remaining int, resetAt time.Time) {
	if c.log == nil || remaining >= 1000 {
		return
	}
	c.log.Warnw("GraphQL rate limit running low",
		"remaining", remaining,
		"resets_at", resetAt.Format(time.RFC3339),
	)
}

func issueRawFromGraphQL(issue graphQLIssue) metrics.Raw {
	r := metrics.Raw{
		"number":     int(issue.Number),
		"title":      string(issue.Title),
		"state":      normalizeState(string(issue.State)),
		"created_at": issue.CreatedAt.Time,
		"labels":     graphQLLabelNames(issue.Labels.Nodes),
		"comments":   int(issue.Comments.TotalCount),
	}
	if issue.ClosedAt != nil {
		r["closed_at"] = issue.ClosedAt.Time
	}
	if issue.Author.Login != "" {
		r["user"] = string(issue.Author.Login)
	}
	return r
}

func pullRawFromGraphQL(pull graphQLPullRequest) metrics.Raw {
	// GraphQL reports MERGED as its own state; the REST enum treats a merged
	// PR as closed with the merged flag set.
	state := normalizeState(string(pull.State))
	if state == "merged" {
		state = "closed"
	}

	r := metrics.Raw{
		"number":          int(pull.Number),
		"title":           string(pull.Title),
		"state":           state,
		"body":            string(pull.Body),
		"created_at":      pull.CreatedAt.Time,
		"merged":          bool(pull.Merged),
		"labels":          graphQLLabelNames(pull.Labels.Nodes),
		"comments":        int(pull.Comments.TotalCount),
		"review_comments": int(pull.Reviews.TotalCount),
	}
	if pull.ClosedAt != nil {
		r["closed_at"] = pull.ClosedAt.Time
	}
	if pull.MergedAt != nil {
		r["merged_at"] = pull.MergedAt.Time
	}
	if pull.Author.Login != "" {
		r["user"] = string(pull.Author.Login)
	}
	return r
}

func normalizeState(state string) string {
	return strings.ToLower(state)
}

func graphQLLabelNames(labels []graphQLLabel) []string {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, string(label.Name))
	}
	return names
}
