// Package coordinator implements the atomic "set if absent, with expiry"
// claim that elects a single authoritative match owner across stateless
// process instances.
package coordinator

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process fallback used when no distributed store is
// configured. Single-process only, but it satisfies the same contract.
type Memory struct {
	mu     sync.Mutex
	owners map[string]memoryClaim
}

type memoryClaim struct {
	owner     string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{owners: make(map[string]memoryClaim)}
}

// Claim atomically takes the key if it is absent or expired. Re-claiming a
// key you already own refreshes it.
func (m *Memory) Claim(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if c, ok := m.owners[key]; ok && c.expiresAt.After(now) && c.owner != owner {
		return false, nil
	}
	m.owners[key] = memoryClaim{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}
