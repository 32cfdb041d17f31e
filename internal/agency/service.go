// Package agency implements the mission tracker's business rules on top of
// the repositories. Every mutating operation runs in one transaction.
package agency

import (
	"context"
	"time"

	"github.com/eleven-am/spycat/internal/auth"
	"github.com/eleven-am/spycat/internal/breeds"
	"github.com/eleven-am/spycat/internal/logger"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/eleven-am/spycat/internal/repository"
)

type Service struct {
	session *orm.Session
	auth    *auth.Service
	breeds  breeds.Validator
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(session *orm.Session, authService *auth.Service, breedValidator breeds.Validator, opts ...Option) *Service {
	if breedValidator == nil {
		breedValidator = breeds.AcceptAll{}
	}

	s := &Service{
		session: session,
		auth:    authService,
		breeds:  breedValidator,
		log:     logger.Auth(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tx runs fn with a Store bound to a single transaction.
func (s *Service) tx(ctx context.Context, fn func(*repository.Store) error) error {
	return s.session.WithTransaction(ctx, func(tx *orm.Session) error {
		return fn(repository.FromSession(tx))
	})
}

// store is for reads that need no transaction.
func (s *Service) store() *repository.Store {
	return repository.FromSession(s.session)
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Ping checks that the database answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.session.Ping(ctx)
}
