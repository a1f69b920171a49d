// Package cache holds recently fetched issue lists so repeated page renders
// within the freshness window don't re-query the GitHub API.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/kawa-dev/contrib-board/internal/domain"
)

// DefaultTTL is the freshness window applied when none is configured.
const DefaultTTL = 5 * time.Second

// DefaultMaxEntries bounds the store; the key space (repository x username
// list) is small and fixed in practice, so 64 is generous.
const DefaultMaxEntries = 64

type entry struct {
	issues    []domain.Issue
	fetchedAt time.Time
}

// Store is a TTL-bounded key/value cache of enriched issue lists, keyed by
// repository and the exact ordered username list. Reordered username lists
// produce distinct keys on purpose.
//
// Entries are written whole and treated as immutable afterwards; a new fetch
// replaces the entry rather than editing it. When the store is full the entry
// with the oldest fetch time is evicted.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxEntries overrides the size bound.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// New creates a Store with the given freshness window.
// A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached issue list for (repo, usernames) if it was fetched
// within the freshness window. The second return reports a hit.
func (s *Store) Get(repo string, usernames []string) ([]domain.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key(repo, usernames)]
	if !ok || s.now().Sub(e.fetchedAt) >= s.ttl {
		return nil, false
	}
	return e.issues, true
}

// Put stores issues for (repo, usernames) with the current timestamp,
// overwriting any previous entry for the same key.
func (s *Store) Put(repo string, usernames []string, issues []domain.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(repo, usernames)
	if _, exists := s.entries[k]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[k] = entry{issues: issues, fetchedAt: s.now()}
}

// Len reports the number of stored entries, fresh or stale.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range s.entries {
		if first || e.fetchedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.fetchedAt
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}

func key(repo string, usernames []string) string {
	return repo + "|" + strings.Join(usernames, ",")
}
