// Package token mints and verifies the signed match token that lets
// independent process instances agree on when a race started. The token is
// stateless: it guarantees payload integrity, not uniqueness.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalid = errors.New("invalid match token")

// claims is the tamper-evident payload: {startedAt, durationMs}.
type claims struct {
	StartedAtMs int64 `json:"startedAt"`
	DurationMs  int64 `json:"durationMs"`
	jwt.RegisteredClaims
}

// MatchToken is a verified token payload.
type MatchToken struct {
	startedAt time.Time
	duration  time.Duration
}

func (t MatchToken) StartedAt() time.Time    { return t.startedAt }
func (t MatchToken) Duration() time.Duration { return t.duration }
func (t MatchToken) EndsAt() time.Time       { return t.startedAt.Add(t.duration) }

// Signer signs and verifies match tokens with a shared HMAC secret. The
// signature comparison inside the JWT library is constant-time.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Mint produces a signed token for a race starting at startedAt.
func (s *Signer) Mint(startedAt time.Time, duration time.Duration) (string, error) {
	c := claims{
		StartedAtMs: startedAt.UnixMilli(),
		DurationMs:  duration.Milliseconds(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify checks the signature and returns the payload. Any malformed or
// mismatched token comes back as ErrInvalid; callers treat that as "no
// token" rather than a fatal condition.
func (s *Signer) Verify(tok string) (MatchToken, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return MatchToken{}, ErrInvalid
	}
	if c.DurationMs <= 0 {
		return MatchToken{}, ErrInvalid
	}
	return MatchToken{
		startedAt: time.UnixMilli(c.StartedAtMs),
		duration:  time.Duration(c.DurationMs) * time.Millisecond,
	}, nil
}
