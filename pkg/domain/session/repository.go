package session

import (
	"context"
	"time"
)

type Repository interface {
	Save(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
	// PurgeExpired removes every session past its TTL at the given instant
	// and returns the removed ids. Backends with native key expiry may
	// return an empty slice.
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
}
