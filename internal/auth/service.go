package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/strata-books/strata-books/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates username/password credentials and issues a token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", shared.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	return s.tokens.Issue(user.Username)
}

// Register creates a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth: username and password required: %w", shared.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("auth: password must be at least 8 characters: %w", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, username, string(hash))
}

// Verify parses a bearer token and returns the subject.
func (s *Service) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

// TokenTTLSeconds exposes the configured token lifetime for login responses.
func (s *Service) TokenTTLSeconds() int {
	return int(s.tokens.ttl.Seconds())
}
