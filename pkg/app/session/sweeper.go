package session

import (
	"context"
	"errors"
	"time"

	domainSession "github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/sirupsen/logrus"
)

// Sweeper reaps sessions past their TTL on a fixed interval: it purges them
// from the store, closes any attached subscriber stream and discards the
// relay queue. This bounds memory growth from abandoned sessions regardless
// of client behavior.
type Sweeper struct {
	repo     domainSession.Repository
	hub      *relay.Hub
	interval time.Duration
	logger   *logrus.Logger
}

func NewSweeper(
	repo domainSession.Repository,
	hub *relay.Hub,
	interval time.Duration,
	logger *logrus.Logger,
) *Sweeper {
	return &Sweeper{
		repo:     repo,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper shutting down")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged, err := s.repo.PurgeExpired(ctx, time.Now())
	if err != nil {
		s.logger.WithError(err).Error("failed to purge expired sessions")
	}
	for _, id := range purged {
		s.hub.DropSession(id)
		prometheus.SessionsExpiredTotal.Inc()
	}

	// Rooms can outlive their session when the backend expires keys
	// natively, or when items were queued for a session purged above.
	for _, id := range s.hub.Sessions() {
		_, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, domainSession.ErrNotFound) || errors.Is(err, domainSession.ErrExpired) {
			s.hub.DropSession(id)
		}
	}

	if n, err := s.repo.Count(ctx); err == nil {
		prometheus.SessionsActive.Set(float64(n))
	}
}
