package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// idSize is the number of random bytes in a session identifier.
// 32 bytes = 256 bits, enough to make brute-force pairing infeasible.
const idSize = 32

var (
	ErrNotFound       = errors.New("session not found")
	ErrExpired        = errors.New("session expired")
	ErrStoreExhausted = errors.New("session store capacity exceeded")
)

type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
)

// Session is an ephemeral pairing context shared between a receiver and a
// sender. It carries a fixed TTL from creation; there is no touch/extend.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the session is past its TTL at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StateAt derives the observable session state at the given instant.
func (s *Session) StateAt(now time.Time) State {
	if s.ExpiredAt(now) {
		return StateExpired
	}
	return StateActive
}

// GenerateID generates a cryptographically secure, URL-safe session ID.
func GenerateID() (string, error) {
	b := make([]byte, idSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidID reports whether id has the shape produced by GenerateID.
func ValidID(id string) bool {
	b, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return false
	}
	return len(b) == idSize
}
