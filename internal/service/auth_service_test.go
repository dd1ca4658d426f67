package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/repository/contract"
	"ai-studypal-be/internal/repository/implementation"
	"ai-studypal-be/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (IAuthService, contract.IUserRepository, *memory.SessionRepository) {
	t.Helper()
	userRepo := implementation.NewUserFileRepository(filepath.Join(t.TempDir(), "users.json"))
	sessionRepo := memory.NewSessionRepository(time.Hour)
	svc := NewAuthService(userRepo, sessionRepo, "test_secret", time.Hour)
	return svc, userRepo, sessionRepo
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.Name)
	assert.NotEmpty(t, res.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user fails identically.
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "pw123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDuplicateUsernameKeepsExistingRecord(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	original, err := userRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, original)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Impostor", Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	after, err := userRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, original.PasswordHash, after.PasswordHash, "existing hash must be untouched")
	assert.Equal(t, "Alice", after.Name)
}

func sessionIDFromToken(t *testing.T, token string) string {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	sessionID, _ := claims["session_id"].(string)
	require.NotEmpty(t, sessionID)
	return sessionID
}

func TestLoginCreatesSessionAndLogoutRemovesIt(t *testing.T) {
	svc, _, sessionRepo := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	sessionID := sessionIDFromToken(t, res.AccessToken)
	sess, found := sessionRepo.Get(sessionID)
	require.True(t, found)
	assert.Equal(t, "Alice", sess.UserName)

	// Two logins yield two independent sessions.
	res2, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, sessionIDFromToken(t, res2.AccessToken))

	require.NoError(t, svc.Logout(ctx, sessionID))
	_, found = sessionRepo.Get(sessionID)
	assert.False(t, found)
}

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := hashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", digest)
	assert.True(t, verifyPassword("pw123", digest))
	assert.False(t, verifyPassword("pw124", digest))
}
