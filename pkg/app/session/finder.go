package session

import (
	"context"

	domainSession "github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=finder_mock.go --case=underscore --with-expecter
type Finder interface {
	Find(ctx context.Context, sessionID string) (*domainSession.Session, error)
}

type finder struct {
	repo   domainSession.Repository
	logger *logrus.Logger
}

func NewFinder(repo domainSession.Repository, logger *logrus.Logger) Finder {
	return &finder{
		repo:   repo,
		logger: logger,
	}
}

// Find validates the identifier shape before touching the store, so
// arbitrary garbage never reaches the backend.
func (f *finder) Find(ctx context.Context, sessionID string) (*domainSession.Session, error) {
	if !domainSession.ValidID(sessionID) {
		return nil, domainSession.ErrNotFound
	}
	return f.repo.GetByID(ctx, sessionID)
}
