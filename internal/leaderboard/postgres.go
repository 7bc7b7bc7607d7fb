package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"wreckers/internal/game"
)

// Postgres persists the board across restarts. Same merge-by-highest
// contract as Memory.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboard (
			id    TEXT PRIMARY KEY,
			name  TEXT NOT NULL,
			score BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating leaderboard: %w", err)
	}
	return nil
}

func (p *Postgres) Merge(entries []game.ScoreEntry) error {
	for _, e := range entries {
		_, err := p.db.Exec(`
			INSERT INTO leaderboard (id, name, score) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
				SET name = EXCLUDED.name, score = EXCLUDED.score
				WHERE leaderboard.score < EXCLUDED.score`,
			e.ID, e.Name, e.Score)
		if err != nil {
			return fmt.Errorf("merging score for %q: %w", e.ID, err)
		}
	}
	return nil
}

func (p *Postgres) Top(limit int) ([]game.ScoreEntry, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	rows, err := p.db.Query(`SELECT id, name, score FROM leaderboard ORDER BY score DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	defer rows.Close()

	var out []game.ScoreEntry
	for rows.Next() {
		var e game.ScoreEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
