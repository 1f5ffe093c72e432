package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/rs/zerolog"
)

const calendarScreen = "calendar"

type CalendarService struct {
	api    EventsAPI
	ctrl   *optimistic.Controller[models.Event]
	clock  clock.Clock
	loc    *time.Location
	logger zerolog.Logger

	mu    sync.RWMutex
	exams []models.Exam
}

func NewCalendarService(api EventsAPI, loc *time.Location, opts MutationOptions, logger zerolog.Logger) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	s := &CalendarService{
		api:    api,
		clock:  opts.clock(),
		loc:    loc,
		logger: logger.With().Str("service", calendarScreen).Logger(),
	}

	s.ctrl = optimistic.New(optimistic.Config[models.Event]{
		Screen:   calendarScreen,
		Key:      func(e models.Event) string { return e.ID },
		WithKey:  func(e models.Event, id string) models.Event { e.ID = id; return e },
		Fetch:    s.fetch,
		Executor: opts.Executor,
		Sink:     opts.Sink,
		Clock:    opts.Clock,
		Timeout:  opts.Timeout,
		Logger:   logger,
	})
	return s
}

func (s *CalendarService) today() time.Time {
	return s.clock.Now().In(s.loc)
}

// fetch загружает события и экзамены параллельно; без экзаменов календарь всё равно показывается
func (s *CalendarService) fetch(ctx context.Context) ([]models.Event, error) {
	var (
		wg               sync.WaitGroup
		events           []models.Event
		exams            []models.Exam
		eventsErr, exErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		events, eventsErr = s.api.ListEvents(ctx)
	}()
	go func() {
		defer wg.Done()
		exams, exErr = s.api.ListExams(ctx)
	}()
	wg.Wait()

	if eventsErr != nil {
		return nil, fmt.Errorf("failed to load events: %w", eventsErr)
	}
	if exErr != nil {
		s.logger.Warn().Err(exErr).Msg("Failed to load exams, showing events only")
	} else {
		s.mu.Lock()
		s.exams = exams
		s.mu.Unlock()
	}

	s.mu.RLock()
	exams = s.exams
	s.mu.RUnlock()

	today := s.today()
	out := make([]models.Event, 0, len(events)+len(exams))
	for _, e := range events {
		e.Status = models.DeriveStatus(e.Date, today)
		out = append(out, e)
	}
	for _, ex := range exams {
		out = append(out, ex.AsEvent(s.loc))
	}
	return out, nil
}

func (s *CalendarService) Load(ctx context.Context) error {
	return s.ctrl.Refresh(ctx)
}

func (s *CalendarService) Events() []models.Event {
	return s.ctrl.Items()
}

func (s *CalendarService) Exams() []models.Exam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Exam(nil), s.exams...)
}

func (s *CalendarService) Subscribe(fn func([]models.Event)) func() {
	return s.ctrl.List().Subscribe(fn)
}

func (s *CalendarService) IsPending(id string) bool {
	return s.ctrl.List().IsPending(id)
}

// DayEvents: события на дату YYYY-MM-DD
func (s *CalendarService) DayEvents(date string) []models.Event {
	var out []models.Event
	for _, e := range s.ctrl.Items() {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// MonthEvents: события месяца, отсортированные по дате
func (s *CalendarService) MonthEvents(year int, month time.Month) []models.Event {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	var out []models.Event
	for _, e := range s.ctrl.Items() {
		if strings.HasPrefix(e.Date, prefix) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// AddEvent сразу показывает событие и сохраняет его в фоне
func (s *CalendarService) AddEvent(ctx context.Context, title, eventType, date string) (*optimistic.Mutation, error) {
	candidate := models.Event{
		Title: strings.TrimSpace(title),
		Type:  strings.TrimSpace(eventType),
		Date:  strings.TrimSpace(date),
	}
	if candidate.Type == "" {
		candidate.Type = "Assignment"
	}
	if err := models.Validate(candidate); err != nil {
		return nil, err
	}
	candidate.Status = models.DeriveStatus(candidate.Date, s.today())

	m := s.ctrl.Create(ctx, candidate, func(ctx context.Context, e models.Event) (models.Event, bool, error) {
		resp, err := s.api.CreateEvent(ctx, models.CreateEventRequest{
			Title:  e.Title,
			Type:   e.Type,
			Date:   e.Date,
			Status: e.Status,
		})
		if err != nil {
			return e, false, err
		}
		saved := resp.Event
		if saved.ID == "" || models.IsPlaceholderID(saved.ID) {
			// сервер не вернул id, заглушку заменит перезагрузка
			return e, false, nil
		}
		if saved.Status == "" {
			saved.Status = e.Status
		}
		return saved, true, nil
	})
	return m, nil
}
