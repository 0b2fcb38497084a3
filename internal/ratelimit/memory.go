package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type counter struct {
	count     int
	expiresAt time.Time
}

// MemoryStore implements Store with an in-process map. Suitable for
// single-replica deployments and tests; expired counters are swept by
// a background janitor.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	cancel   context.CancelFunc
}

// NewMemoryStore creates a new in-memory rate limit store and starts
// its janitor goroutine
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryStore{
		counters: make(map[string]*counter),
		cancel:   cancel,
	}
	go s.janitor(ctx, sweepInterval)
	return s
}

// Increment bumps the counter for key and returns the new count
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		c = &counter{expiresAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

// Reset clears the counter for key
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}

// Close stops the janitor
func (s *MemoryStore) Close() error {
	s.cancel()
	return nil
}

// janitor periodically removes expired counters
func (s *MemoryStore) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	removed := 0
	for key, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, key)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		slog.Debug("rate limit counters swept", "removed", removed)
	}
}
