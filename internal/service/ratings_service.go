package service

import (
	"context"
	"strings"
	"sync"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/rs/zerolog"
)

const ratingsScreen = "ratings"

type RatingsService struct {
	api    RatingsAPI
	ctrl   *optimistic.Controller[models.Rating]
	clock  clock.Clock
	logger zerolog.Logger

	mu       sync.RWMutex
	teachers []models.Teacher
}

func NewRatingsService(api RatingsAPI, opts MutationOptions, logger zerolog.Logger) *RatingsService {
	s := &RatingsService{
		api:    api,
		clock:  opts.clock(),
		logger: logger.With().Str("service", ratingsScreen).Logger(),
	}

	s.ctrl = optimistic.New(optimistic.Config[models.Rating]{
		Screen:  ratingsScreen,
		Key:     func(r models.Rating) string { return r.ID },
		WithKey: func(r models.Rating, id string) models.Rating { r.ID = id; return r },
		Fetch: func(ctx context.Context) ([]models.Rating, error) {
			return s.api.ListRatings(ctx, "")
		},
		Prepend:  true,
		Executor: opts.Executor,
		Sink:     opts.Sink,
		Clock:    opts.Clock,
		Timeout:  opts.Timeout,
		Logger:   logger,
	})
	return s
}

// Load загружает преподавателей и оценки
func (s *RatingsService) Load(ctx context.Context) error {
	teachers, err := s.api.ListTeachers(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.teachers = teachers
	s.mu.Unlock()

	return s.ctrl.Refresh(ctx)
}

func (s *RatingsService) Ratings() []models.Rating {
	return s.ctrl.Items()
}

func (s *RatingsService) Subscribe(fn func([]models.Rating)) func() {
	return s.ctrl.List().Subscribe(fn)
}

func (s *RatingsService) IsPending(id string) bool {
	return s.ctrl.List().IsPending(id)
}

// FilterTeachers ищет по имени или предмету без учёта регистра
func (s *RatingsService) FilterTeachers(term string) []models.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		if term == "" ||
			strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.Subject), term) {
			out = append(out, t)
		}
	}
	return out
}

// RatingsFor: оценки одного преподавателя
func (s *RatingsService) RatingsFor(teacher string) []models.Rating {
	var out []models.Rating
	for _, r := range s.ctrl.Items() {
		if strings.EqualFold(r.TeacherName, teacher) {
			out = append(out, r)
		}
	}
	return out
}

// Average: средняя оценка и число оценок преподавателя
func (s *RatingsService) Average(teacher string) (float64, int) {
	ratings := s.RatingsFor(teacher)
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}

// Submit сразу добавляет оценку в начало списка и отправляет её в фоне
func (s *RatingsService) Submit(ctx context.Context, r models.Rating) (*optimistic.Mutation, error) {
	r.ID = ""
	r.TeacherName = strings.TrimSpace(r.TeacherName)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Feedback = strings.TrimSpace(r.Feedback)
	if err := models.Validate(r); err != nil {
		return nil, err
	}
	if r.Date == "" {
		r.Date = s.clock.Now().Format(models.DateLayout)
	}

	// POST /api/ratings не возвращает запись, заглушку заменит перезагрузка
	m := s.ctrl.Create(ctx, r, func(ctx context.Context, rating models.Rating) (models.Rating, bool, error) {
		return rating, false, s.api.CreateRating(ctx, rating.CreateRequest())
	})
	return m, nil
}
