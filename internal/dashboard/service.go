// Package dashboard assembles repository activity reports.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github-pulse/config"
	"github-pulse/internal/metrics"
	"github-pulse/internal/models"
)

// ErrUpstream signals a failure talking to the hosting platform.
var ErrUpstream = errors.New("upstream fetch failed")

// Fetcher returns raw issue and pull request records for one repository
// window, already partitioned.
type Fetcher interface {
	FetchWindow(ctx context.Context, owner, name string, start, end time.Time) ([]metrics.Raw, []metrics.Raw, error)
}

// Service fetches, normalizes and aggregates repository activity. Reports are
// memoized per window: the aggregates are pure functions of their inputs, so
// a cached report is indistinguishable from a recomputed one.
type Service struct {
	log     *zap.SugaredLogger
	fetcher Fetcher
	owner   string
	repo    string
	timeout time.Duration
	now     func() time.Time

	mu   sync.Mutex
	memo map[string]*models.Report
}

// New constructs the dashboard service.
func New(log *zap.SugaredLogger, fetcher Fetcher, owner, repo string, timeout time.Duration) *Service {
	return &Service{
		log:     log,
		fetcher: fetcher,
		owner:   owner,
		repo:    repo,
		timeout: timeout,
		now:     time.Now,
		memo:    make(map[string]*models.Report),
	}
}

// Report returns the full aggregate report for a window, fetching and
// computing it on first request and serving the memoized copy afterwards.
func (s *Service) Report(ctx context.Context, window config.Window) (*models.Report, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s@%s", s.owner, s.repo, window.Key())

	s.mu.Lock()
	if report, ok := s.memo[key]; ok {
		s.mu.Unlock()
		s.log.Debugw("serving memoized report", "key", key)
		return report, nil
	}
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Infow("fetching repository activity",
		"repository", s.owner+"/"+s.repo,
		"window", window.Key(),
	)
	rawIssues, rawPulls, err := s.fetcher.FetchWindow(ctx, s.owner, s.repo, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	issues, pulls, err := metrics.Normalize(rawIssues, rawPulls)
	if err != nil {
		return nil, fmt.Errorf("normalize records: %w", err)
	}

	report := Compose(s.owner+"/"+s.repo, issues, pulls, window, s.now())
	s.log.Infow("report ready",
		"issues", report.KPIs.TotalIssues,
		"pulls", report.KPIs.TotalPRs,
		"window", window.Key(),
	)

	s.mu.Lock()
	s.memo[key] = &report
	s.mu.Unlock()

	return &report, nil
}

// Compose runs every aggregate over normalized collections. It is a pure
// function; callers own memoization.
func Compose(repository string, issues []models.Issue, pulls []models.PullRequest, window config.Window, now time.Time) models.Report {
	return models.Report{
		Repository:  repository,
		Start:       window.Start,
		End:         window.End,
		GeneratedAt: now,

		KPIs:        metrics.ComputeKPIs(issues, pulls),
		Throughput:  metrics.Throughput(issues, pulls, window.Start, window.End),
		CycleTime:   metrics.CycleTime(pulls, window.Start, window.End),
		Timeline:    metrics.Timeline(issues, pulls),
		Labels:      metrics.LabelFrequency(issues, pulls),
		Leaderboard: metrics.Leaderboard(issues, pulls),
		Aging:       metrics.Aging(issues, now),
		Linkage:     metrics.Linkage(pulls),

		Issues: issues,
		Pulls:  pulls,
	}
}
