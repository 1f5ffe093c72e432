// Package debounce откладывает поисковые запросы до паузы во вводе и
// гарантирует, что на экран попадает только ответ на последний запрос.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/rs/zerolog"
)

const DefaultDelay = 300 * time.Millisecond

type (
	SearchFunc[Q, R any] func(ctx context.Context, query Q) (R, error)
	// ResultFunc получает только ответ на последний отправленный запрос
	ResultFunc[Q, R any] func(query Q, result R, err error)
)

type Config[Q, R any] struct {
	Delay    time.Duration
	Search   SearchFunc[Q, R]
	OnResult ResultFunc[Q, R]
	Clock    clock.Clock
	Logger   zerolog.Logger
}

type Searcher[Q, R any] struct {
	delay    time.Duration
	search   SearchFunc[Q, R]
	onResult ResultFunc[Q, R]
	clock    clock.Clock
	logger   zerolog.Logger

	mu      sync.Mutex
	timer   clock.Timer
	query   Q
	armed   bool
	seq     uint64
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func New[Q, R any](cfg Config[Q, R]) *Searcher[Q, R] {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.OnResult == nil {
		cfg.OnResult = func(Q, R, error) {}
	}

	return &Searcher[Q, R]{
		delay:    cfg.Delay,
		search:   cfg.Search,
		onResult: cfg.OnResult,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
}

// Trigger запоминает запрос и перезапускает таймер ожидания
func (s *Searcher[Q, R]) Trigger(query Q) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.query = query
	s.armed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.delay, s.fire)
}

// Flush отправляет отложенный запрос сразу
func (s *Searcher[Q, R]) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Stop отменяет таймер и запрос в полёте; последующие Trigger игнорируются
func (s *Searcher[Q, R]) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Seq: номер последнего отправленного запроса
func (s *Searcher[Q, R]) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Wait дожидается завершения отправленных запросов
func (s *Searcher[Q, R]) Wait() {
	s.wg.Wait()
}

func (s *Searcher[Q, R]) fire() {
	s.mu.Lock()
	if s.stopped || !s.armed {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.timer = nil

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.seq++
	seq := s.seq
	query := s.query
	s.wg.Add(1)
	s.mu.Unlock()

	go s.dispatch(ctx, cancel, seq, query)
}

func (s *Searcher[Q, R]) dispatch(ctx context.Context, cancel context.CancelFunc, seq uint64, query Q) {
	defer s.wg.Done()
	defer cancel()

	result, err := s.search(ctx, query)

	s.mu.Lock()
	latest := seq == s.seq && !s.stopped
	s.mu.Unlock()

	if !latest {
		s.logger.Debug().Uint64("seq", seq).Msg("Discarded stale search response")
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Uint64("seq", seq).Msg("Search request failed")
	}
	s.onResult(query, result, err)
}
