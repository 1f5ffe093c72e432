package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

var ErrObjectNotFound = errors.New("object not found")

// DownloadStore хранит скачанные файлы
type DownloadStore interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Location: путь или URL сохранённого объекта для показа пользователю
	Location(key string) string
	Provider() string
}

type StorageConfig struct {
	Provider  string
	Dir       string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Timeout   time.Duration
}

func New(cfg StorageConfig, logger zerolog.Logger) (DownloadStore, error) {
	switch cfg.Provider {
	case "", ProviderLocal:
		return NewLocalStorage(cfg.Dir, logger)
	case ProviderMinIO:
		return NewMinIOStorage(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
