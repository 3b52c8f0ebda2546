package identity

import (
	"context"
	"log/slog"

	"medichart/internal/records/models"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/requestcontext"
)

// UserDirectory is the slice of the domain store the identity service needs
// to resolve emails to users.
type UserDirectory interface {
	UserByEmail(email string) (models.User, bool)
}

type Service struct {
	directory UserDirectory
	creds     *CredentialStore
	tokens    *TokenService
	log       *slog.Logger
}

func NewService(directory UserDirectory, creds *CredentialStore, tokens *TokenService, log *slog.Logger) *Service {
	return &Service{directory: directory, creds: creds, tokens: tokens, log: log}
}

// Login authenticates email and password and returns a signed token for the
// matched user. The role is part of the login form; a mismatch is rejected
// with the same error as a bad password so the endpoint does not leak which
// part was wrong.
func (s *Service) Login(ctx context.Context, email, password, role string) (string, requestcontext.ActorInfo, error) {
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return "", requestcontext.ActorInfo{}, derrors.Wrap(err, derrors.CodeInvalidInput, "invalid role")
	}

	user, ok := s.directory.UserByEmail(email)
	if !ok || user.Role != parsedRole || !user.Active || !s.creds.Verify(email, password) {
		s.log.InfoContext(ctx, "login rejected", slog.String("email", normalizeEmail(email)))
		return "", requestcontext.ActorInfo{}, derrors.New(derrors.CodeUnauthorized, "invalid credentials")
	}

	actor := requestcontext.ActorInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
	token, err := s.tokens.Generate(actor, requestcontext.Now(ctx))
	if err != nil {
		return "", requestcontext.ActorInfo{}, err
	}
	s.log.InfoContext(ctx, "login succeeded",
		slog.String("user_id", string(user.ID)),
		slog.String("role", user.Role.String()),
	)
	return token, actor, nil
}

// SetPassword stores credentials for a user that already exists in the
// directory.
func (s *Service) SetPassword(ctx context.Context, email, password string) error {
	if _, ok := s.directory.UserByEmail(email); !ok {
		return derrors.New(derrors.CodeNotFound, "no user registered for that email")
	}
	return s.creds.SetPassword(ctx, email, password)
}
