package subscription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrCacheMiss is returned when no entry exists for a user
var ErrCacheMiss = errors.New("subscription: cache miss")

// Entry is one cached membership answer
type Entry struct {
	UserID     int64     `json:"user_id"`
	Subscribed bool      `json:"subscribed"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Store keeps entries; staleness is decided by the Gate
type Store interface {
	Get(ctx context.Context, userID int64) (Entry, error)
	Put(ctx context.Context, entry Entry) error
}

// Stats are simple counters for cache behavior
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Puts   int64 `json:"puts"`
	Pruned int64 `json:"pruned"`
	Size   int   `json:"size"`
}

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	entries map[int64]Entry
	mu      sync.RWMutex

	hits   int64
	misses int64
	puts   int64
	pruned int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]Entry)}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, userID int64) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[userID]
	if !ok {
		atomic.AddInt64(&s.misses, 1)
		return Entry{}, ErrCacheMiss
	}

	atomic.AddInt64(&s.hits, 1)
	return entry, nil
}

// Put implements Store
func (s *MemoryStore) Put(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.UserID] = entry
	atomic.AddInt64(&s.puts, 1)
	return nil
}

// Prune drops entries checked before cutoff and returns how many were dropped
func (s *MemoryStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, entry := range s.entries {
		if entry.CheckedAt.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	atomic.AddInt64(&s.pruned, int64(n))
	return n
}

// Len returns the number of cached entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns the cache counters
func (s *MemoryStore) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&s.hits),
		Misses: atomic.LoadInt64(&s.misses),
		Puts:   atomic.LoadInt64(&s.puts),
		Pruned: atomic.LoadInt64(&s.pruned),
		Size:   s.Len(),
	}
}
