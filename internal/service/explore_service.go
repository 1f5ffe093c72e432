package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/debounce"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
)

type ExploreResult struct {
	Filter    models.ResourceFilter
	Resources []models.Resource
	Err       error
}

// ExploreService держит фильтры страницы поиска; каждое изменение запускает
// отложенный запрос, на экран попадает только ответ на последний
type ExploreService struct {
	api      ResourcesAPI
	searcher *debounce.Searcher[models.ResourceFilter, []models.Resource]
	logger   zerolog.Logger

	mu        sync.RWMutex
	filter    models.ResourceFilter
	result    ExploreResult
	listeners map[int]func(ExploreResult)
	nextID    int
}

func NewExploreService(api ResourcesAPI, delay time.Duration, clk clock.Clock, logger zerolog.Logger) *ExploreService {
	s := &ExploreService{
		api:       api,
		logger:    logger.With().Str("service", "explore").Logger(),
		listeners: make(map[int]func(ExploreResult)),
	}
	s.searcher = debounce.New(debounce.Config[models.ResourceFilter, []models.Resource]{
		Delay:    delay,
		Search:   s.api.ListResources,
		OnResult: s.apply,
		Clock:    clk,
		Logger:   s.logger,
	})
	return s
}

func (s *ExploreService) apply(filter models.ResourceFilter, resources []models.Resource, err error) {
	res := ExploreResult{Filter: filter, Resources: resources, Err: err}

	s.mu.Lock()
	if err == nil {
		s.result = res
	} else {
		// прежние результаты остаются на экране
		s.result.Err = err
		res.Resources = s.result.Resources
	}
	listeners := make([]func(ExploreResult), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(res)
	}
}

func (s *ExploreService) Subscribe(fn func(ExploreResult)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *ExploreService) update(fn func(f *models.ResourceFilter)) {
	s.mu.Lock()
	fn(&s.filter)
	filter := s.filter.Clone()
	s.mu.Unlock()

	s.searcher.Trigger(filter)
}

func (s *ExploreService) SetFilter(f models.ResourceFilter) {
	s.update(func(cur *models.ResourceFilter) { *cur = f.Clone() })
}

func (s *ExploreService) ToggleCourse(course string) {
	s.update(func(f *models.ResourceFilter) { f.Courses = toggle(f.Courses, course) })
}

func (s *ExploreService) ToggleType(t string) {
	s.update(func(f *models.ResourceFilter) { f.Types = toggle(f.Types, t) })
}

func (s *ExploreService) SetSemester(semester int) {
	s.update(func(f *models.ResourceFilter) { f.Semester = semester })
}

func (s *ExploreService) SetYear(year int) {
	s.update(func(f *models.ResourceFilter) { f.Year = year })
}

func (s *ExploreService) SetSearch(text string) {
	s.update(func(f *models.ResourceFilter) { f.Search = text })
}

func (s *ExploreService) Reset() {
	s.update(func(f *models.ResourceFilter) { *f = models.ResourceFilter{} })
}

func (s *ExploreService) Filter() models.ResourceFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Clone()
}

// Query: параметры запроса для текущих фильтров
func (s *ExploreService) Query() url.Values {
	return s.Filter().Values()
}

func (s *ExploreService) Result() ExploreResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Flush отправляет отложенный запрос немедленно
func (s *ExploreService) Flush() {
	s.searcher.Flush()
}

// Wait дожидается отправленных запросов
func (s *ExploreService) Wait() {
	s.searcher.Wait()
}

func (s *ExploreService) Stop() {
	s.searcher.Stop()
}

// Search: разовый запрос без дебаунса (CLI и HTTP)
func (s *ExploreService) Search(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	return s.api.ListResources(ctx, filter)
}

func toggle(values []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return values
	}
	for i, cur := range values {
		if cur == v {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return append(values, v)
}
