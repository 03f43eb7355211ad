package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nexus-chat/internal/mocks"
	"nexus-chat/internal/models"
	"nexus-chat/internal/repositories"
)

func TestRegisterHashesPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("CreateUser", mock.Anything, "alice", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")) == nil
	})).Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	svc := NewService(users)
	user, err := svc.Register(context.Background(), " alice ", "s3cret")

	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	users.AssertExpectations(t)
}

func TestRegisterEmptyFields(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := NewService(users)

	_, err := svc.Register(context.Background(), "  ", "pw")
	require.ErrorIs(t, err, ErrEmptyFields)

	_, err = svc.Register(context.Background(), "alice", "")
	require.ErrorIs(t, err, ErrEmptyFields)

	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("CreateUser", mock.Anything, "alice", mock.Anything).Return(models.User{}, repositories.ErrUsernameTaken).Once()

	svc := NewService(users)
	_, err := svc.Register(context.Background(), "alice", "pw")

	require.ErrorIs(t, err, repositories.ErrUsernameTaken)
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	users.On("GetUserByUsername", mock.Anything, "alice").Return(models.User{ID: 1, Username: "alice", PasswordHash: string(hash)}, nil).Once()

	svc := NewService(users)
	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")

	require.NoError(t, err)
	require.Equal(t, 1, user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mocks.UserRepositoryMock)
	users.On("GetUserByUsername", mock.Anything, "alice").Return(models.User{ID: 1, PasswordHash: string(hash)}, nil).Once()

	svc := NewService(users)
	_, err = svc.Authenticate(context.Background(), "alice", "wrong")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUserByUsername", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	svc := NewService(users)
	_, err := svc.Authenticate(context.Background(), "ghost", "pw")

	require.ErrorIs(t, err, ErrInvalidCredentials)
}
