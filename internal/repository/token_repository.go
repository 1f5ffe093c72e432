package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const tokenKey = "token"

type storedToken struct {
	Value   string    `json:"value"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenRepository хранит токен авторизации между запусками
type TokenRepository interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type tokenRepository struct {
	store *BoltStore
}

func NewTokenRepository(store *BoltStore) TokenRepository {
	return &tokenRepository{store: store}
}

func (r *tokenRepository) Save(_ context.Context, token string) error {
	if err := save(r.store, sessionBucket, tokenKey, storedToken{Value: token, SavedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load возвращает пустую строку, если токена нет
func (r *tokenRepository) Load(_ context.Context) (string, error) {
	t, err := get[storedToken](r.store, sessionBucket, tokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return t.Value, nil
}

func (r *tokenRepository) Clear(_ context.Context) error {
	err := remove(r.store, sessionBucket, tokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
