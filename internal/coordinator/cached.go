package coordinator

import (
	"context"
	"sync"
	"time"
)

// Claimer is the claim contract shared by every backend.
type Claimer interface {
	Claim(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
}

// Cached wraps a Claimer with a short-lived result cache so every sync call
// doesn't hammer the store. Bounded to a few hundred milliseconds; errors
// are never cached.
type Cached struct {
	inner  Claimer
	maxAge time.Duration

	mu      sync.Mutex
	results map[string]cachedResult
}

type cachedResult struct {
	claimed bool
	at      time.Time
}

func NewCached(inner Claimer, maxAge time.Duration) *Cached {
	if maxAge <= 0 || maxAge > 500*time.Millisecond {
		maxAge = 300 * time.Millisecond
	}
	return &Cached{inner: inner, maxAge: maxAge, results: make(map[string]cachedResult)}
}

func (c *Cached) Claim(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	if r, ok := c.results[key]; ok && time.Since(r.at) < c.maxAge {
		c.mu.Unlock()
		return r.claimed, nil
	}
	c.mu.Unlock()

	claimed, err := c.inner.Claim(ctx, key, owner, ttl)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.results[key] = cachedResult{claimed: claimed, at: time.Now()}
	c.mu.Unlock()
	return claimed, nil
}
