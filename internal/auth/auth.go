// Package auth implements password verification and server-side sessions.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/model"
	"github.com/startificial/requireflow/internal/store"
)

// invalidCredentials is deliberately identical for unknown email and wrong
// password so login attempts cannot probe for registered accounts.
const invalidCredentials = "Invalid email or password"

type Service struct {
	repo       store.Repository
	sessionTTL time.Duration
	logger     logger.Logger
}

func NewService(repo store.Repository, sessionTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		logger:     log,
	}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.NewValidation("Invalid password", map[string][]string{
			"password": {"must not be empty"},
		})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.NewAPI("failed to hash password: "+err.Error(), 500, nil)
	}
	return string(hash), nil
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	fields := map[string][]string{}
	if email == "" {
		fields["email"] = append(fields["email"], "must not be empty")
	}
	if name == "" {
		fields["name"] = append(fields["name"], "must not be empty")
	}
	if len(fields) > 0 {
		return nil, errors.NewValidation("Invalid registration", fields)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if c := errors.Classify(err); c.Known && c.Err.Code == errors.CodeNotFound {
			return nil, nil, errors.NewAuthentication(invalidCredentials)
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, errors.NewAuthentication(invalidCredentials)
	}

	session := &model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL).UTC().Truncate(time.Second),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("Session issued")
	return session, user, nil
}

// Authenticate resolves a session token to its user. Missing and expired
// sessions both come back as Authentication variants.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, errors.NewAuthentication("Authentication required")
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		if c := errors.Classify(err); c.Known && c.Err.Code == errors.CodeNotFound {
			return nil, errors.NewAuthentication("Authentication required")
		}
		return nil, err
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, errors.NewAuthentication("Session expired")
	}

	return s.repo.GetUser(ctx, session.UserID)
}

// Logout revokes a session. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}
