package service

import (
	"context"
	"testing"

	"fieldvisit/internal/repository"
	"fieldvisit/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService() AuthService {
	return NewAuthService(repository.NewMemoryCredentialsRepository(), store.NewMemoryKV(), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	cred, err := svc.Register(ctx, "admin1", "s3cret", "admin")
	require.NoError(t, err)
	require.NotZero(t, cred.ID)
	require.Equal(t, "admin", cred.AccessLevel)
	require.NotEqual(t, "s3cret", cred.PasswordHash)

	resp, err := svc.Login(ctx, "admin1", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "admin", resp.AccessLevel)

	session, err := svc.Validate(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, "admin1", session.Username)
	require.Equal(t, "admin", session.AccessLevel)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "right", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "u1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "right")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDefaultsAndDuplicates(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	cred, err := svc.Register(ctx, "u1", "pw", "")
	require.NoError(t, err)
	require.Equal(t, "user", cred.AccessLevel)

	var ve *ValidationError
	_, err = svc.Register(ctx, "u1", "pw2", "")
	require.ErrorAs(t, err, &ve)
}

func TestActiveSessionsTracksLiveTokens(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "pw", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "u2", "pw", "admin")
	require.NoError(t, err)

	r1, err := svc.Login(ctx, "u1", "pw")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "u2", "pw")
	require.NoError(t, err)

	sessions, err := svc.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	usernames := map[string]string{}
	for _, s := range sessions {
		usernames[s.Username] = s.AccessLevel
	}
	require.Equal(t, "user", usernames["u1"])
	require.Equal(t, "admin", usernames["u2"])

	// Logout drops the session from the listing.
	require.NoError(t, svc.Logout(ctx, r1.Token))
	sessions, err = svc.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "u2", sessions[0].Username)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "pw", "")
	require.NoError(t, err)
	resp, err := svc.Login(ctx, "u1", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Validate(ctx, resp.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
