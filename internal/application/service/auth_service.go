package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vargak/pennyflow-backend/internal/infrastructure/auth"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// AuthService handles registration and login
type AuthService struct {
	storage storage.Repository
	tokens  *auth.Manager
	logger  *slog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(store storage.Repository, tokens *auth.Manager, logger *slog.Logger) *AuthService {
	return &AuthService{
		storage: store,
		tokens:  tokens,
		logger:  logger,
	}
}

// Register creates a new account and returns the user
func (s *AuthService) Register(email, password string) (*storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.storage.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.storage.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns a signed token.
// Lookup and password failures produce the same error so the response
// does not leak which emails exist.
func (s *AuthService) Login(email, password string) (string, *storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
