package utils

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between successive operations.
// The Mercari collaborator calls Wait before every search so queries stay
// at least one interval apart regardless of how fast pages load.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter creates a RateLimiter with the given minimum interval
// in milliseconds.
func NewRateLimiter(intervalMs int) *RateLimiter {
	return &RateLimiter{
		interval: time.Duration(intervalMs) * time.Millisecond,
	}
}

// Wait blocks until at least one interval has passed since the previous
// call, then records the current time. The first call never blocks.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() {
		elapsed := time.Since(r.last)
		if elapsed < r.interval {
			time.Sleep(r.interval - elapsed)
		}
	}
	r.last = time.Now()
}

// URLSet is a thread-safe set for tracking listing URLs already seen,
// used to merge results from multiple search strategies without duplicates.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
