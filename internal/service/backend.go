package service

import (
	"context"
	"errors"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/Guneet-syan/Neural-Breach/internal/service/integration"
	"github.com/Guneet-syan/Neural-Breach/internal/session"
	"github.com/Guneet-syan/Neural-Breach/internal/worker"
)

var (
	ErrInvalidInput = models.ErrInvalidInput
	ErrNotLoggedIn  = session.ErrNotLoggedIn
	ErrNotFound     = errors.New("not found")
	ErrNoAuthor     = errors.New("current user is unknown: set user.author or log in")
)

type EventsAPI interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.CreateEventResponse, error)
	ListExams(ctx context.Context) ([]models.Exam, error)
}

type RatingsAPI interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListRatings(ctx context.Context, teacherName string) ([]models.Rating, error)
	CreateRating(ctx context.Context, req models.CreateRatingRequest) error
}

type ResourcesAPI interface {
	ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	UpdateResource(ctx context.Context, id string, req models.UpdateResourceRequest) error
	DeleteResource(ctx context.Context, id string) error
}

type FilesAPI interface {
	Upload(ctx context.Context, req models.UploadRequest) (*models.UploadResponse, error)
	Download(ctx context.Context, filename string) (*integration.Download, error)
}

type ProfileAPI interface {
	Profile(ctx context.Context) (*models.Profile, error)
}

var (
	_ EventsAPI    = (*integration.Client)(nil)
	_ RatingsAPI   = (*integration.Client)(nil)
	_ ResourcesAPI = (*integration.Client)(nil)
	_ FilesAPI     = (*integration.Client)(nil)
	_ ProfileAPI   = (*integration.Client)(nil)
)

// MutationOptions: общие настройки оптимистичных контроллеров экранов
type MutationOptions struct {
	Executor worker.Executor
	Sink     optimistic.Sink
	Clock    clock.Clock
	Timeout  time.Duration
}

func (o MutationOptions) clock() clock.Clock {
	if o.Clock == nil {
		return clock.Real{}
	}
	return o.Clock
}

// AuthorResolver возвращает имя текущего пользователя для поля author
type AuthorResolver func(ctx context.Context) (string, error)

// StaticAuthor: имя из конфигурации; пустое имя означает, что пользователь неизвестен
func StaticAuthor(name string) AuthorResolver {
	return func(context.Context) (string, error) {
		if name == "" {
			return "", ErrNoAuthor
		}
		return name, nil
	}
}

// ProfileAuthor берёт имя из настроек, иначе из профиля на сервере
func ProfileAuthor(configured string, profile ProfileAPI) AuthorResolver {
	return func(ctx context.Context) (string, error) {
		if configured != "" {
			return configured, nil
		}
		p, err := profile.Profile(ctx)
		if err != nil {
			if errors.Is(err, ErrNotLoggedIn) {
				return "", ErrNoAuthor
			}
			return "", err
		}
		if p.Name == "" {
			return "", ErrNoAuthor
		}
		return p.Name, nil
	}
}
