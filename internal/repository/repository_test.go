package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepository(newTestStore(t))

	token, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, repo.Save(ctx, "abc"))
	token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	token, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewBoltStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, NewTokenRepository(store).Save(ctx, "persisted"))
	require.NoError(t, store.Close())

	store, err = NewBoltStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	token, err := NewTokenRepository(store).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestDownloadRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDownloadRepository(newTestStore(t))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &models.DownloadRecord{ID: "1", Filename: "a.pdf", DownloadedAt: now}))
	require.NoError(t, repo.Create(ctx, &models.DownloadRecord{ID: "2", Filename: "b.pdf", DownloadedAt: now.Add(time.Hour)}))
	assert.Error(t, repo.Create(ctx, &models.DownloadRecord{}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b.pdf", all[0].Filename)

	rec, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", rec.Filename)

	require.NoError(t, repo.Delete(ctx, "1"))
	_, err = repo.GetByID(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "1"), ErrNotFound)
}
