package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token string
	err   error
	creds []models.Credentials
}

func (a *fakeAuth) Login(_ context.Context, creds models.Credentials) (*models.Token, error) {
	a.creds = append(a.creds, creds)
	if a.err != nil {
		return nil, a.err
	}
	return &models.Token{AccessToken: a.token, TokenType: "bearer"}, nil
}

func (a *fakeAuth) Signup(_ context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &models.SignupResponse{Message: "User created", Email: req.Email}, nil
}

func signedToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newTokens(t *testing.T) repository.TokenRepository {
	t.Helper()
	store, err := repository.NewBoltStore(filepath.Join(t.TempDir(), "session.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return repository.NewTokenRepository(store)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, "asha@campus.edu", now.Add(time.Hour))
	auth := &fakeAuth{token: token}
	tokens := newTokens(t)

	m := NewManager(auth, tokens, clock.NewFake(now), zerolog.Nop())
	require.NoError(t, m.Init(ctx))
	assert.False(t, m.LoggedIn())

	var events []bool
	m.Subscribe(func(loggedIn bool) { events = append(events, loggedIn) })

	require.NoError(t, m.Login(ctx, " asha@campus.edu ", "secret"))
	assert.Equal(t, "asha@campus.edu", auth.creds[0].Email)

	header, err := m.Authorization()
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, header)

	claims, err := m.Claims()
	require.NoError(t, err)
	assert.Equal(t, "asha@campus.edu", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))

	stored, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	require.NoError(t, m.Logout(ctx))
	_, err = m.Token()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	stored, err = tokens.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	assert.Equal(t, []bool{true, false}, events)
}

func TestLoginFailureStaysLoggedOut(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{err: errors.New("401 Unauthorized")}
	m := NewManager(auth, newTokens(t), nil, zerolog.Nop())

	err := m.Login(ctx, "asha@campus.edu", "anything")
	require.Error(t, err)
	assert.False(t, m.LoggedIn())
}

func TestLoginValidatesInput(t *testing.T) {
	auth := &fakeAuth{token: "x"}
	m := NewManager(auth, newTokens(t), nil, zerolog.Nop())

	err := m.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Empty(t, auth.creds)
}

func TestInitRestoresAndDiscardsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tokens := newTokens(t)

	valid := signedToken(t, "a@b.c", now.Add(time.Minute))
	require.NoError(t, tokens.Save(ctx, valid))
	m := NewManager(&fakeAuth{}, tokens, clock.NewFake(now), zerolog.Nop())
	require.NoError(t, m.Init(ctx))
	assert.True(t, m.LoggedIn())

	expired := signedToken(t, "a@b.c", now.Add(-time.Minute))
	require.NoError(t, tokens.Save(ctx, expired))
	m = NewManager(&fakeAuth{}, tokens, clock.NewFake(now), zerolog.Nop())
	require.NoError(t, m.Init(ctx))
	assert.False(t, m.LoggedIn())

	stored, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestOpaqueTokenKept(t *testing.T) {
	ctx := context.Background()
	tokens := newTokens(t)
	require.NoError(t, tokens.Save(ctx, "opaque-token"))

	m := NewManager(&fakeAuth{}, tokens, nil, zerolog.Nop())
	require.NoError(t, m.Init(ctx))
	assert.True(t, m.LoggedIn())

	_, err := m.Claims()
	assert.ErrorIs(t, err, ErrNotJWT)
}

func TestSignup(t *testing.T) {
	m := NewManager(&fakeAuth{}, newTokens(t), nil, zerolog.Nop())

	_, err := m.Signup(context.Background(), models.SignupRequest{Email: "bad"})
	require.Error(t, err)

	resp, err := m.Signup(context.Background(), models.SignupRequest{
		Email: "asha@campus.edu", Name: "Asha", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@campus.edu", resp.Email)
}
