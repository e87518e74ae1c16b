package session

import (
	"context"
	"time"

	domainSession "github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Creator --dir=. --output=./mocks --filename=creator_mock.go --case=underscore --with-expecter
type Creator interface {
	Create(ctx context.Context) (*domainSession.Session, error)
}

type creator struct {
	repo   domainSession.Repository
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCreator(repo domainSession.Repository, ttl time.Duration, logger *logrus.Logger) Creator {
	return &creator{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *creator) Create(ctx context.Context) (*domainSession.Session, error) {
	id, err := domainSession.GenerateID()
	if err != nil {
		return nil, err
	}

	s := domainSession.NewSession(id, c.ttl)
	if err := c.repo.Save(ctx, s); err != nil {
		return nil, err
	}

	prometheus.SessionsCreatedTotal.Inc()
	c.logger.WithFields(logrus.Fields{
		"session_id": s.ID,
		"expires_at": s.ExpiresAt,
	}).Debug("session created")

	return s, nil
}
