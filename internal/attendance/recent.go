package attendance

import (
	"sync"

	"badgeclock/internal/domain"
)

// DefaultRecentScans matches the five lines the operator screen shows
const DefaultRecentScans = 5

// RecentScans is a bounded, most-recent-first scan log
type RecentScans struct {
	mu      sync.RWMutex
	entries []domain.ScanEntry
	limit   int
}

// NewRecentScans creates a log keeping at most limit entries
func NewRecentScans(limit int) *RecentScans {
	if limit <= 0 {
		limit = DefaultRecentScans
	}
	return &RecentScans{
		entries: make([]domain.ScanEntry, 0, limit),
		limit:   limit,
	}
}

// Add puts entry at the front, dropping the oldest entry when full
func (r *RecentScans) Add(entry domain.ScanEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) < r.limit {
		r.entries = append(r.entries, domain.ScanEntry{})
	}
	copy(r.entries[1:], r.entries[:len(r.entries)-1])
	r.entries[0] = entry
}

// List returns a copy of the log, newest first
func (r *RecentScans) List() []domain.ScanEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ScanEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries held
func (r *RecentScans) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
