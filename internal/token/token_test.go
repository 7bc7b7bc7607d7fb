package token

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	s := NewSigner("secret")
	startedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tok, err := s.Mint(startedAt, 3*time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	mt, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !mt.StartedAt().Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", mt.StartedAt(), startedAt)
	}
	if mt.Duration() != 3*time.Minute {
		t.Errorf("Duration = %v, want 3m", mt.Duration())
	}
	if !mt.EndsAt().Equal(startedAt.Add(3 * time.Minute)) {
		t.Errorf("EndsAt = %v", mt.EndsAt())
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewSigner("alpha").Mint(time.Now(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSigner("beta").Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Verify with wrong secret = %v, want ErrInvalid", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := NewSigner("secret")
	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := s.Verify(tok); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) = %v, want ErrInvalid", tok, err)
		}
	}
}

func TestVerifyRejectsNonPositiveDuration(t *testing.T) {
	s := NewSigner("secret")
	tok, err := s.Mint(time.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Verify of zero-duration token = %v, want ErrInvalid", err)
	}
}

// Flipping any single character of a token must invalidate it: the signature
// covers the encoded header and payload, and the signature itself has no
// redundancy to survive mutation.
func TestSingleCharacterMutationInvalidates(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	s := NewSigner("secret")

	rapid.Check(t, func(t *rapid.T) {
		startedAt := time.UnixMilli(rapid.Int64Range(0, 4_000_000_000_000).Draw(t, "startedAtMs"))
		duration := time.Duration(rapid.Int64Range(1, 86_400_000).Draw(t, "durationMs")) * time.Millisecond
		tok, err := s.Mint(startedAt, duration)
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}

		idx := rapid.IntRange(0, len(tok)-1).Draw(t, "idx")
		repl := rapid.SampledFrom([]byte(alphabet)).Draw(t, "repl")
		if tok[idx] == repl {
			return
		}
		mutated := tok[:idx] + string(repl) + tok[idx+1:]

		if _, err := s.Verify(mutated); err == nil {
			t.Fatalf("mutated token verified: idx=%d %q -> %q", idx, tok[idx], repl)
		}
	})
}
