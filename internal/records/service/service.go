// Package service orchestrates the domain store: it parses and validates
// caller input, applies mutations, and emits changelog events and metrics
// for everything that actually changed.
package service

import (
	"context"
	"log/slog"

	"medichart/internal/changelog"
	"medichart/internal/platform/metrics"
	"medichart/internal/records/models"
	"medichart/internal/records/store"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/requestcontext"
)

type Service struct {
	store     *store.Store
	log       *slog.Logger
	metrics   *metrics.Metrics
	publisher changelog.Publisher
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p changelog.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// emit publishes a changelog event and bumps the mutation counter. Publish
// failures are logged, not returned: the mutation is already applied and
// persisted, and the changelog is an observer, not a participant.
func (s *Service) emit(ctx context.Context, entity string, op changelog.Op, id string, before, after any) {
	s.metrics.ObserveMutation(entity, string(op))
	s.metrics.SetCollectionSizes(s.store.Counts())

	if s.publisher == nil {
		return
	}
	event := changelog.Event{
		Entity:    entity,
		Op:        op,
		ID:        id,
		At:        requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
	if actor, ok := requestcontext.Actor(ctx); ok {
		event.ActorID = actor.ID
		event.ActorRole = actor.Role
	}
	if before != nil {
		event.Before = changelog.Marshal(before)
	}
	if after != nil {
		event.After = changelog.Marshal(after)
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "changelog publish failed",
			slog.String("entity", entity),
			slog.String("op", string(op)),
			slog.String("id", id),
			slog.Any("error", err),
		)
	}
}

// reject counts the failure by code before handing the error back.
func (s *Service) reject(err error) error {
	s.metrics.ObserveRejection(string(derrors.CodeOf(err)))
	return err
}

// DanglingRefs reports cross-collection references whose target was deleted.
func (s *Service) DanglingRefs() []store.DanglingRef {
	return s.store.DanglingRefs()
}

// Counts exposes collection sizes for diagnostics.
func (s *Service) Counts() map[string]int {
	return s.store.Counts()
}

func (s *Service) Users() []models.User       { return s.store.Users() }
func (s *Service) Patients() []models.Patient { return s.store.Patients() }
func (s *Service) Doctors() []models.Doctor   { return s.store.Doctors() }
func (s *Service) Admins() []models.Admin     { return s.store.Admins() }

func (s *Service) UsersByRole(role string) ([]models.User, error) {
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, s.reject(derrors.Wrap(err, derrors.CodeInvalidInput, "invalid role filter"))
	}
	return s.store.UsersByRole(parsed), nil
}

func (s *Service) UserByID(id domain.UserID) (models.User, bool) {
	return s.store.UserByID(id)
}

func (s *Service) PatientByID(id domain.UserID) (models.Patient, bool) {
	return s.store.PatientByID(id)
}

func (s *Service) DoctorByID(id domain.UserID) (models.Doctor, bool) {
	return s.store.DoctorByID(id)
}
