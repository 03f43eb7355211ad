package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"nexus-chat/internal/models"
	"nexus-chat/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyFields        = errors.New("username and password are required")
)

// Service handles registration and credential verification. Passwords are
// stored only as bcrypt hashes.
type Service struct {
	users repositories.UserRepository
}

// NewService constructs a Service.
func NewService(users repositories.UserRepository) *Service {
	return &Service{users: users}
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, ErrEmptyFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	return s.users.CreateUser(ctx, username, string(hash))
}

// Authenticate verifies a username/password pair. Unknown usernames and bad
// passwords both map to ErrInvalidCredentials so the response does not leak
// which part was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
