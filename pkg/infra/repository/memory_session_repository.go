package repository

import (
	"context"
	"sync"
	"time"

	"github.com/beamdrop/beamdrop/pkg/domain/session"
)

// memorySessionRepository is the default single-instance session store: a
// mutex-guarded map with lazy expiry on read and a periodic purge driven by
// the lifecycle sweeper.
type memorySessionRepository struct {
	mu          sync.RWMutex
	sessions    map[string]*session.Session
	maxSessions int
}

func NewMemorySessionRepository(maxSessions int) session.Repository {
	return &memorySessionRepository{
		sessions:    make(map[string]*session.Session),
		maxSessions: maxSessions,
	}
}

func (r *memorySessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; !exists {
		if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
			return session.ErrStoreExhausted
		}
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memorySessionRepository) GetByID(ctx context.Context, sessionID string) (*session.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, session.ErrNotFound
	}

	if s.ExpiredAt(time.Now()) {
		// Lazy destroy: an expired session must never be observed as active.
		r.mu.Lock()
		if current, ok := r.sessions[sessionID]; ok && current.ExpiredAt(time.Now()) {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()
		return nil, session.ErrExpired
	}
	return s, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *memorySessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

func (r *memorySessionRepository) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged []string
	for id, s := range r.sessions {
		if s.ExpiredAt(now) {
			delete(r.sessions, id)
			purged = append(purged, id)
		}
	}
	return purged, nil
}
