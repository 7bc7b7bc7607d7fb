package coordinator

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Postgres backs the claim with a shared table. The insert-or-steal-expired
// statement is a single atomic operation, so two concurrent claimants can
// never both win. Any store error fails closed: the caller gets "not
// claimed" plus the error and must not start a competing match.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the claims table if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS match_claims (
			key        TEXT PRIMARY KEY,
			owner      TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating match_claims: %w", err)
	}
	return nil
}

func (p *Postgres) Claim(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO match_claims (key, owner, expires_at)
		VALUES ($1, $2, NOW() + $3 * INTERVAL '1 millisecond')
		ON CONFLICT (key) DO UPDATE
			SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at
			WHERE match_claims.expires_at < NOW() OR match_claims.owner = EXCLUDED.owner`,
		key, owner, ttl.Milliseconds())
	if err != nil {
		return false, fmt.Errorf("claiming %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming %q: %w", key, err)
	}
	return affected > 0, nil
}
