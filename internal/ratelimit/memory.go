package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryStore is an in-process token bucket store, suitable for single
// instance deployments. Buckets are created lazily per key and never evicted;
// the key space (client IPs behind a gateway) is assumed to stay small.
type MemoryStore struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewMemoryStore creates a store allowing perWindow requests per window,
// with a burst of the same size.
func NewMemoryStore(perWindow int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		rate:  rate.Limit(float64(perWindow) / window.Seconds()),
		burst: perWindow,
	}
}

func (m *MemoryStore) getLimiter(key string) *rate.Limiter {
	if limiter, ok := m.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.rate, m.burst))
	return limiter.(*rate.Limiter)
}

// Check implements Store.
func (m *MemoryStore) Check(_ context.Context, key string) (Result, error) {
	reservation := m.getLimiter(key).Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return Result{Limited: true, RetryAfter: delay}, nil
	}
	return Result{}, nil
}

var _ Store = (*MemoryStore)(nil)
