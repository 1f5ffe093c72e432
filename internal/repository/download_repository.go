package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

type DownloadRepository interface {
	Create(ctx context.Context, record *models.DownloadRecord) error
	GetByID(ctx context.Context, id string) (*models.DownloadRecord, error)
	GetAll(ctx context.Context) ([]*models.DownloadRecord, error)
	Delete(ctx context.Context, id string) error
}

type downloadRepository struct {
	store *BoltStore
}

func NewDownloadRepository(store *BoltStore) DownloadRepository {
	return &downloadRepository{store: store}
}

func (r *downloadRepository) Create(_ context.Context, record *models.DownloadRecord) error {
	if record.ID == "" {
		return errors.New("download record id is required")
	}
	if err := save(r.store, downloadsBucket, record.ID, record); err != nil {
		return fmt.Errorf("failed to save download record: %w", err)
	}
	return nil
}

func (r *downloadRepository) GetByID(_ context.Context, id string) (*models.DownloadRecord, error) {
	return get[models.DownloadRecord](r.store, downloadsBucket, id)
}

// GetAll возвращает историю, новые загрузки первыми
func (r *downloadRepository) GetAll(_ context.Context) ([]*models.DownloadRecord, error) {
	records, err := list[*models.DownloadRecord](r.store, downloadsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DownloadedAt.After(records[j].DownloadedAt)
	})
	return records, nil
}

func (r *downloadRepository) Delete(_ context.Context, id string) error {
	return remove(r.store, downloadsBucket, id)
}
