package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimitService throttles repeated attempts per key. The device runs a
// single process with no external cache, so a sliding window in memory is
// enough; limits reset on restart, which is acceptable for a local API.
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Block(ctx context.Context, key string, duration time.Duration, reason string) error
	IsBlocked(ctx context.Context, key string) (bool, error)
	GetAttempts(ctx context.Context, key string) (int, error)
}

type entry struct {
	attempts     []time.Time
	blockedUntil time.Time
}

type rateLimitService struct {
	mu      sync.Mutex
	entries map[string]*entry
	enabled bool
	now     func() time.Time
}

func NewRateLimitService(enabled bool) RateLimitService {
	return &rateLimitService{
		entries: make(map[string]*entry),
		enabled: enabled,
		now:     time.Now,
	}
}

func (s *rateLimitService) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !s.enabled {
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	s.prune(e, window)
	return len(e.attempts) < limit, nil
}

func (s *rateLimitService) Increment(_ context.Context, key string, window time.Duration) error {
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	s.prune(e, window)
	e.attempts = append(e.attempts, s.now())
	return nil
}

func (s *rateLimitService) Block(_ context.Context, key string, duration time.Duration, _ string) error {
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	e.blockedUntil = s.now().Add(duration)
	return nil
}

func (s *rateLimitService) IsBlocked(_ context.Context, key string) (bool, error) {
	if !s.enabled {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	return s.now().Before(e.blockedUntil), nil
}

func (s *rateLimitService) GetAttempts(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	return len(e.attempts), nil
}

func (s *rateLimitService) get(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

func (s *rateLimitService) prune(e *entry, window time.Duration) {
	cutoff := s.now().Add(-window)
	kept := e.attempts[:0]
	for _, t := range e.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.attempts = kept
}
