package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/familylog/pkg/errors"
)

func newTestService(cfg Config, now time.Time) *service {
	svc := NewService(cfg, newTestLogger()).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_IssueAndValidate(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	svc := newTestService(Config{Secret: "test-secret", Issuer: "familylog"}, now)

	token, err := svc.IssueToken("household-1", TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "household-1", claims.Subject)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
	require.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt))
}

func TestService_RejectsBadTokens(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	svc := newTestService(Config{Secret: "test-secret"}, now)

	_, err := svc.ValidateToken(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	other := newTestService(Config{Secret: "other-secret"}, now)
	foreign, err := other.IssueToken("x", TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), foreign)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	wrongType, err := svc.IssueToken("x", "refresh", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), wrongType)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	token, err := svc.IssueToken("x", TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_ActiveSession(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	issuer := newTestService(Config{Secret: "test-secret"}, now)
	device, err := issuer.IssueToken("phone-1", TokenTypeDevice, 30*24*time.Hour)
	require.NoError(t, err)

	none := newTestService(Config{Secret: "test-secret"}, now)
	_, ok, err := none.ActiveSession(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	svc := newTestService(Config{Secret: "test-secret", DeviceToken: device}, now)
	session, ok, err := svc.ActiveSession(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "phone-1", session.Subject)

	svc.now = func() time.Time { return now.Add(31 * 24 * time.Hour) }
	_, ok, err = svc.ActiveSession(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
