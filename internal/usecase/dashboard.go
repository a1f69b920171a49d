package usecase

import (
	"context"
	"time"

	"github.com/kawa-dev/contrib-board/internal/cache"
	"github.com/kawa-dev/contrib-board/internal/domain"
	"go.uber.org/zap"
)

// IssueFetcher is the slice of the enrichment pipeline the dashboard needs.
type IssueFetcher interface {
	FetchEnrichedIssues(ctx context.Context, owner, repo string, usernames []string) []domain.Issue
}

// Overview is one rendered snapshot of the board: the merged, sorted issue
// list across all configured repositories plus its aggregate counts.
type Overview struct {
	Issues     []domain.Issue `json:"issues"`
	Summary    domain.Summary `json:"summary"`
	SortField  string         `json:"sort"`
	Descending bool           `json:"descending"`
}

// Dashboard serves board snapshots, going to the cache first and the
// enrichment pipeline on a miss.
type Dashboard struct {
	fetcher   IssueFetcher
	store     *cache.Store
	logger    *zap.SugaredLogger
	owner     string
	repos     []string
	usernames []string
	now       func() time.Time
}

// DashboardOption configures a Dashboard.
type DashboardOption func(*Dashboard)

// WithDashboardClock overrides the time source used for age statistics.
func WithDashboardClock(now func() time.Time) DashboardOption {
	return func(d *Dashboard) { d.now = now }
}

// NewDashboard creates a Dashboard instance.
func NewDashboard(fetcher IssueFetcher, store *cache.Store, logger *zap.SugaredLogger, owner string, repos, usernames []string, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		fetcher:   fetcher,
		store:     store,
		logger:    logger,
		owner:     owner,
		repos:     repos,
		usernames: usernames,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Issues returns the enriched issues for one repository, served from the
// cache when a fresh entry exists. Misses run the pipeline and store the
// result, empty or not.
func (d *Dashboard) Issues(ctx context.Context, repo string) []domain.Issue {
	if issues, ok := d.store.Get(repo, d.usernames); ok {
		d.logger.Debugw("cache hit", "repo", repo)
		return issues
	}
	issues := d.fetcher.FetchEnrichedIssues(ctx, d.owner, repo, d.usernames)
	d.store.Put(repo, d.usernames, issues)
	d.logger.Debugw("cache refreshed", "repo", repo, "count", len(issues))
	return issues
}

// Overview merges all configured repositories, sorts by the requested field
// and computes summary counts.
func (d *Dashboard) Overview(ctx context.Context, sortField string, descending bool) Overview {
	all := make([]domain.Issue, 0)
	for _, repo := range d.repos {
		all = append(all, d.Issues(ctx, repo)...)
	}
	sorted := domain.SortIssues(all, sortField, descending)
	return Overview{
		Issues:     sorted,
		Summary:    domain.Summarize(sorted, d.now()),
		SortField:  sortField,
		Descending: descending,
	}
}
