package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:"

// redisSessionRepository keeps session metadata in redis with native key
// TTLs, so sessions survive a relay restart. Relay queues and subscriber
// slots stay in-memory regardless; only validity is shared. Requires a
// dedicated redis DB index, since Count relies on DBSize.
type redisSessionRepository struct {
	client      *redis.Client
	maxSessions int
}

func NewRedisSessionRepository(client *redis.Client, maxSessions int) session.Repository {
	return &redisSessionRepository{
		client:      client,
		maxSessions: maxSessions,
	}
}

func (r *redisSessionRepository) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *redisSessionRepository) Save(ctx context.Context, s *session.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return session.ErrExpired
	}

	if r.maxSessions > 0 {
		n, err := r.client.DBSize(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}
		if n >= int64(r.maxSessions) {
			return session.ErrStoreExhausted
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.key(s.ID), data, ttl).Err()
}

func (r *redisSessionRepository) GetByID(ctx context.Context, sessionID string) (*session.Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired keys vanish, so a missing key covers both taxa.
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s session.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.ExpiredAt(time.Now()) {
		return nil, session.ErrExpired
	}
	return &s, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *redisSessionRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *redisSessionRepository) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	// Redis expires session keys natively.
	return nil, nil
}
