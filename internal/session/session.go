// Package session владеет токеном авторизации процесса.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrNotJWT      = errors.New("token is not a JWT")
)

// Authenticator: сервер авторизации (REST-клиент в проде)
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Token, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error)
}

type Claims struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type Listener func(loggedIn bool)

type Manager struct {
	auth   Authenticator
	tokens repository.TokenRepository
	clock  clock.Clock
	logger zerolog.Logger

	mu        sync.RWMutex
	token     string
	listeners map[int]Listener
	nextID    int
}

func NewManager(auth Authenticator, tokens repository.TokenRepository, clk clock.Clock, logger zerolog.Logger) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{
		auth:      auth,
		tokens:    tokens,
		clock:     clk,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Init читает сохранённый токен; просроченный JWT удаляется
func (m *Manager) Init(ctx context.Context) error {
	token, err := m.tokens.Load(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if claims, err := parseClaims(token); err == nil && !claims.ExpiresAt.IsZero() && !m.clock.Now().Before(claims.ExpiresAt) {
		m.logger.Info().Time("expired_at", claims.ExpiresAt).Msg("Stored token expired, discarding")
		return m.tokens.Clear(ctx)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	m.logger.Debug().Msg("Session restored")
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := models.Validate(creds); err != nil {
		return err
	}

	tok, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", creds.Email).Msg("Login failed")
		return fmt.Errorf("login failed: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return errors.New("login failed: empty token")
	}

	if err := m.tokens.Save(ctx, tok.AccessToken); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = tok.AccessToken
	m.mu.Unlock()

	m.logger.Info().Str("email", creds.Email).Msg("Logged in")
	m.notify(true)
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.tokens.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	m.logger.Info().Msg("Logged out")
	m.notify(false)
	return nil
}

func (m *Manager) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	resp, err := m.auth.Signup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return resp, nil
}

// Token: единственный способ прочитать токен
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNotLoggedIn
	}
	return m.token, nil
}

func (m *Manager) LoggedIn() bool {
	_, err := m.Token()
	return err == nil
}

// Authorization: значение заголовка Authorization
func (m *Manager) Authorization() (string, error) {
	token, err := m.Token()
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// Claims декодирует JWT без проверки подписи, её проверяет сервер
func (m *Manager) Claims() (*Claims, error) {
	token, err := m.Token()
	if err != nil {
		return nil, err
	}
	return parseClaims(token)
}

func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(loggedIn bool) {
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(loggedIn)
	}
}

func parseClaims(token string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	claims := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}
