package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/countdown"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
)

type ClassService struct {
	api     EventsAPI
	classes map[string]models.ClassInfo
	clock   clock.Clock
	loc     *time.Location
	logger  zerolog.Logger
}

func NewClassService(api EventsAPI, classes map[string]models.ClassInfo, clk clock.Clock, loc *time.Location, logger zerolog.Logger) *ClassService {
	if classes == nil {
		classes = models.DefaultClasses
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ClassService{
		api:     api,
		classes: classes,
		clock:   clk,
		loc:     loc,
		logger:  logger.With().Str("service", "class").Logger(),
	}
}

// View: карточка класса; режим сессии включается, если экзамен ближе двух недель
func (s *ClassService) View(ctx context.Context, id string) (*models.ClassView, error) {
	info, ok := s.classes[id]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", id, ErrNotFound)
	}

	view := &models.ClassView{ClassInfo: info, Exams: []models.Exam{}}

	exams, err := s.api.ListExams(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load exams for class page")
		return view, nil
	}

	view.Exams = exams
	entries := countdown.Entries(exams, s.loc, s.logger)
	view.ExamSeason = countdown.InExamWindow(entries, s.clock.Now(), countdown.ExamWindowDays)
	return view, nil
}

// Countdown: текущий обратный отсчёт для всех экзаменов
func (s *ClassService) Countdown(ctx context.Context) (map[string]string, []models.Exam, error) {
	exams, err := s.api.ListExams(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries := countdown.Entries(exams, s.loc, s.logger)
	return countdown.Snapshot(entries, s.clock.Now()), exams, nil
}

// Watch запускает посекундный отсчёт; остановить через Stop у результата
func (s *ClassService) Watch(ctx context.Context, onTick func(map[string]string)) (*countdown.Ticker, error) {
	exams, err := s.api.ListExams(ctx)
	if err != nil {
		return nil, err
	}
	t := countdown.NewTicker(s.clock, countdown.Entries(exams, s.loc, s.logger), onTick)
	t.Start()
	return t, nil
}
