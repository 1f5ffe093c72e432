package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/repository"
	"github.com/Guneet-syan/Neural-Breach/internal/service/storage"
	"github.com/Guneet-syan/Neural-Breach/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type DownloadsService struct {
	api     FilesAPI
	store   storage.DownloadStore
	history repository.DownloadRepository
	digest  *hash.Digest
	clock   clock.Clock
	logger  zerolog.Logger
}

func NewDownloadsService(api FilesAPI, store storage.DownloadStore, history repository.DownloadRepository, clk clock.Clock, logger zerolog.Logger) *DownloadsService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &DownloadsService{
		api:     api,
		store:   store,
		history: history,
		digest:  hash.New(hash.SHA256),
		clock:   clk,
		logger:  logger.With().Str("service", "downloads").Logger(),
	}
}

// Download скачивает файл в хранилище и записывает его в историю
func (s *DownloadsService) Download(ctx context.Context, filename, title string) (*models.DownloadRecord, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename == "." || filename == ".." || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("%w: invalid filename %q", ErrInvalidInput, filename)
	}

	d, err := s.api.Download(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer d.Body.Close()

	w, err := s.digest.NewWriter()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	key := id + "_" + filename
	if err := s.store.Save(ctx, key, io.TeeReader(d.Body, w), d.Size, d.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store download: %w", err)
	}

	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	record := &models.DownloadRecord{
		ID:           id,
		Filename:     filename,
		Title:        title,
		Size:         w.Size(),
		SHA256:       w.Sum(),
		Location:     s.store.Location(key),
		DownloadedAt: s.clock.Now().UTC(),
	}
	if err := s.history.Create(ctx, record); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Error().Err(derr).Str("key", key).Msg("Failed to remove orphaned download")
		}
		return nil, err
	}

	s.logger.Info().
		Str("filename", filename).
		Int64("size", record.Size).
		Str("location", record.Location).
		Msg("File downloaded")

	return record, nil
}

// List возвращает историю и отмечает записи, чьи файлы удалены из хранилища
func (s *DownloadsService) List(ctx context.Context) ([]*models.DownloadRecord, error) {
	records, err := s.history.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		ok, err := s.store.Exists(ctx, storeKey(rec))
		if err != nil {
			s.logger.Warn().Err(err).Str("id", rec.ID).Msg("Failed to check stored file")
			continue
		}
		rec.Missing = !ok
	}
	return records, nil
}

func storeKey(rec *models.DownloadRecord) string {
	return rec.ID + "_" + rec.Filename
}

// Open открывает сохранённую копию
func (s *DownloadsService) Open(ctx context.Context, id string) (io.ReadCloser, *models.DownloadRecord, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	r, _, err := s.store.Open(ctx, storeKey(rec))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, fmt.Errorf("download %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return r, rec, nil
}

// Delete удаляет запись истории и сохранённый файл
func (s *DownloadsService) Delete(ctx context.Context, id string) error {
	rec, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, storeKey(rec)); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Str("filename", rec.Filename).Msg("Download removed")
	return nil
}

func (s *DownloadsService) get(ctx context.Context, id string) (*models.DownloadRecord, error) {
	rec, err := s.history.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("download %s: %w", id, ErrNotFound)
	}
	return rec, err
}
