// Package leaderboard is the merge-by-highest-score store race results are
// pushed into. Entries are keyed by player id; merging keeps the best score
// ever seen for that id.
package leaderboard

import (
	"sort"
	"sync"

	"wreckers/internal/game"
)

// MaxEntries caps what Top ever returns.
const MaxEntries = 20

// Store is the leaderboard contract: merge results in, read sorted
// descending back out.
type Store interface {
	Merge(entries []game.ScoreEntry) error
	Top(limit int) ([]game.ScoreEntry, error)
}

// Memory keeps the board in process memory.
type Memory struct {
	mu      sync.Mutex
	entries map[string]game.ScoreEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]game.ScoreEntry)}
}

func (m *Memory) Merge(entries []game.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if existing, ok := m.entries[e.ID]; !ok || e.Score > existing.Score {
			m.entries[e.ID] = e
		}
	}
	return nil
}

func (m *Memory) Top(limit int) ([]game.ScoreEntry, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	m.mu.Lock()
	out := make([]game.ScoreEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
