package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kawa-dev/contrib-board/internal/cache"
	"github.com/kawa-dev/contrib-board/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFetcher returns canned issues per repo and counts pipeline runs.
type stubFetcher struct {
	byRepo map[string][]domain.Issue
	calls  int
}

func (s *stubFetcher) FetchEnrichedIssues(_ context.Context, _, repo string, _ []string) []domain.Issue {
	s.calls++
	return s.byRepo[repo]
}

func newTestDashboard(fetcher IssueFetcher, repos []string) (*Dashboard, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := cache.New(5*time.Second, cache.WithClock(clock))
	d := NewDashboard(fetcher, store, zap.NewNop().Sugar(), "org", repos, []string{"alice", "bob"},
		WithDashboardClock(clock))
	return d, &now
}

func TestDashboard_ServesFromCacheWithinWindow(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{
		"zeppelin": {{Repo: "zeppelin", Number: 1}},
	}}
	d, _ := newTestDashboard(fetcher, []string{"zeppelin"})

	first := d.Issues(context.Background(), "zeppelin")
	second := d.Issues(context.Background(), "zeppelin")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second call must be a cache hit")
}

func TestDashboard_RefetchesAfterWindowElapses(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{
		"zeppelin": {{Repo: "zeppelin", Number: 1}},
	}}
	d, now := newTestDashboard(fetcher, []string{"zeppelin"})

	d.Issues(context.Background(), "zeppelin")
	*now = now.Add(6 * time.Second)
	d.Issues(context.Background(), "zeppelin")

	assert.Equal(t, 2, fetcher.calls)
}

func TestDashboard_CachesEmptyResults(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{}}
	d, _ := newTestDashboard(fetcher, []string{"zeppelin"})

	d.Issues(context.Background(), "zeppelin")
	d.Issues(context.Background(), "zeppelin")

	assert.Equal(t, 1, fetcher.calls, "an empty result is still a cacheable result")
}

func TestDashboard_OverviewMergesSortsAndSummarizes(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{
		"zeppelin": {
			{Repo: "zeppelin", Number: 7, Merged: true, Approved: true},
			{Repo: "zeppelin", Number: 2},
		},
		"helium": {
			{Repo: "helium", Number: 4, Approved: true},
		},
	}}
	d, _ := newTestDashboard(fetcher, []string{"zeppelin", "helium"})

	ov := d.Overview(context.Background(), "number", false)

	require.Len(t, ov.Issues, 3)
	assert.Equal(t, 2, ov.Issues[0].Number)
	assert.Equal(t, 4, ov.Issues[1].Number)
	assert.Equal(t, 7, ov.Issues[2].Number)
	assert.Equal(t, 3, ov.Summary.Total)
	assert.Equal(t, 1, ov.Summary.Merged)
	assert.Equal(t, 2, ov.Summary.Unmerged)
	assert.Equal(t, 2, ov.Summary.Approved)
	assert.Equal(t, "number", ov.SortField)
	assert.False(t, ov.Descending)
}

func TestDashboard_OverviewDescending(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{
		"zeppelin": {{Repo: "zeppelin", Number: 1}, {Repo: "zeppelin", Number: 3}},
	}}
	d, _ := newTestDashboard(fetcher, []string{"zeppelin"})

	ov := d.Overview(context.Background(), "number", true)

	require.Len(t, ov.Issues, 2)
	assert.Equal(t, 3, ov.Issues[0].Number)
	assert.True(t, ov.Descending)
}

func TestDashboard_RepositoriesAreCachedIndependently(t *testing.T) {
	fetcher := &stubFetcher{byRepo: map[string][]domain.Issue{
		"zeppelin": {{Repo: "zeppelin", Number: 1}},
		"helium":   {{Repo: "helium", Number: 2}},
	}}
	d, _ := newTestDashboard(fetcher, []string{"zeppelin", "helium"})

	d.Overview(context.Background(), "number", false)
	assert.Equal(t, 2, fetcher.calls)

	d.Overview(context.Background(), "number", false)
	assert.Equal(t, 2, fetcher.calls, "both repos should hit the cache")
}
