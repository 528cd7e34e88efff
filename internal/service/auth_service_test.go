package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *MockUserRepository) {
	t.Helper()
	jwtService, err := auth.NewJWTService("auth-test-secret", 24, 24)
	require.NoError(t, err)
	userRepo := new(MockUserRepository)
	return NewAuthService(userRepo, jwtService), userRepo
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_RegisterRejectsTakenEmail(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "taken@example.com").
		Return(&entity.User{ID: 1, Email: "taken@example.com"}, nil)

	_, err := svc.Register("newuser", "taken@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_RegisterRejectsTakenUsername(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByUsername", "taken").Return(&entity.User{ID: 2, Username: "taken"}, nil)

	_, err := svc.Register("taken", "new@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_RegisterCreatesUser(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByUsername", "newuser").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := svc.Register("newuser", "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	userRepo.AssertExpectations(t)
}

func TestAuthService_LoginIssuesToken(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "owner@example.com").Return(&entity.User{
		ID:       7,
		Email:    "owner@example.com",
		Password: hashedPassword(t, "password123"),
	}, nil)

	user, token, err := svc.Login("owner@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.NotEmpty(t, token)
}

func TestAuthService_LoginRejectsWrongPassword(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "owner@example.com").Return(&entity.User{
		ID:       7,
		Email:    "owner@example.com",
		Password: hashedPassword(t, "password123"),
	}, nil)

	_, _, err := svc.Login("owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc, userRepo := newAuthFixture(t)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login("ghost@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
