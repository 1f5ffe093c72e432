// Package optimistic применяет пользовательские мутации к списку экрана сразу,
// до ответа сервера, и затем сверяет список с сервером.
//
// Политика сверки одна для всех экранов: после успешного запроса список
// перезагружается из источника истины, после ошибки изменение откатывается.
// Повторов нет.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrPlaceholder = errors.New("record is not confirmed by the server yet")
)

type (
	WithKeyFunc[T any] func(T, string) T
	Fetcher[T any]     func(ctx context.Context) ([]T, error)
	Persister[T any]   func(ctx context.Context, record T) error
	Remover            func(ctx context.Context, key string) error
	// Creator сохраняет новую запись. durable == true, если сервер вернул
	// сохранённую запись с настоящим id.
	Creator[T any] func(ctx context.Context, record T) (saved T, durable bool, err error)
)

type Config[T any] struct {
	// Screen: имя экрана для логов и событий
	Screen  string
	Key     KeyFunc[T]
	WithKey WithKeyFunc[T]
	Fetch   Fetcher[T]
	// Prepend: новые записи в начало списка (оценки), иначе в конец (календарь)
	Prepend  bool
	Executor worker.Executor
	Sink     Sink
	Clock    clock.Clock
	// NewID генерирует id заглушки, по умолчанию tmp-<uuid>
	NewID   func() string
	Timeout time.Duration
	Logger  zerolog.Logger
}

type Controller[T any] struct {
	screen   string
	list     *List[T]
	withKey  WithKeyFunc[T]
	fetch    Fetcher[T]
	executor worker.Executor
	sink     Sink
	clock    clock.Clock
	newID    func() string
	timeout  time.Duration
	logger   zerolog.Logger
}

func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.Executor == nil {
		cfg.Executor = worker.Go{}
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return models.PlaceholderPrefix + uuid.NewString() }
	}

	return &Controller[T]{
		screen:   cfg.Screen,
		list:     NewList(cfg.Key, cfg.Prepend),
		withKey:  cfg.WithKey,
		fetch:    cfg.Fetch,
		executor: cfg.Executor,
		sink:     cfg.Sink,
		clock:    cfg.Clock,
		newID:    cfg.NewID,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.With().Str("screen", cfg.Screen).Logger(),
	}
}

func (c *Controller[T]) List() *List[T] {
	return c.list
}

func (c *Controller[T]) Items() []T {
	return c.list.Items()
}

// Refresh загружает список из источника истины. Ответ устаревшей
// перезагрузки не перетирает более новый.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	seq := c.list.beginRefresh()

	items, err := c.fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", c.screen, err)
	}

	c.logRefresh(seq, c.list.applyRefresh(seq, items))
	return nil
}

func (c *Controller[T]) logRefresh(seq uint64, result refreshResult) {
	switch result {
	case refreshStale:
		c.logger.Debug().Uint64("seq", seq).Msg("Discarded stale refresh")
	case refreshDeferred:
		c.logger.Debug().Uint64("seq", seq).Msg("Refresh deferred until pending creates settle")
	}
}

// Create вставляет кандидата с id-заглушкой и в фоне сохраняет его.
// Сохранённая запись сразу заменяет заглушку.
func (c *Controller[T]) Create(ctx context.Context, candidate T, persist Creator[T]) *Mutation {
	placeholder := c.newID()
	record := c.withKey(candidate, placeholder)

	m := newMutation(models.MutationCreate, placeholder)
	c.list.insertPlaceholder(record, m.token)

	c.logger.Debug().Str("placeholder", placeholder).Msg("Optimistic create applied")

	var (
		saved   T
		durable bool
	)
	c.run(ctx, m, func(bg context.Context) error {
		var err error
		saved, durable, err = persist(bg, record)
		return err
	}, func() {
		c.list.rollbackCreate(placeholder, m.token)
	}, func() uint64 {
		return c.list.confirmCreate(placeholder, m.token, saved, durable)
	})

	return m
}

// Update сразу заменяет запись, при ошибке возвращает последнее
// подтверждённое сервером значение
func (c *Controller[T]) Update(ctx context.Context, next T, persist Persister[T]) (*Mutation, error) {
	key := c.list.key(next)
	if models.IsPlaceholderID(key) {
		return nil, ErrPlaceholder
	}

	m := newMutation(models.MutationUpdate, key)
	base, ok := c.list.replace(next, m.token)
	if !ok {
		return nil, ErrNotFound
	}

	c.run(ctx, m, func(bg context.Context) error {
		return persist(bg, next)
	}, func() {
		c.list.rollbackUpdate(base, m.token)
	}, func() uint64 {
		return c.list.confirm(key, m.token, next)
	})

	return m, nil
}

// Delete сразу убирает запись, при ошибке возвращает её на прежнее место
func (c *Controller[T]) Delete(ctx context.Context, key string, remove Remover) (*Mutation, error) {
	if models.IsPlaceholderID(key) {
		return nil, ErrPlaceholder
	}

	m := newMutation(models.MutationDelete, key)
	base, index, ok := c.list.remove(key, m.token)
	if !ok {
		return nil, ErrNotFound
	}

	c.run(ctx, m, func(bg context.Context) error {
		return remove(bg, key)
	}, func() {
		c.list.rollbackDelete(base, index, m.token)
	}, func() uint64 {
		return c.list.confirm(key, m.token, base)
	})

	return m, nil
}

// run выполняет запрос в фоне; confirm отмечает успех в списке и выдаёт
// номер перезагрузки, которая сверит список с сервером
func (c *Controller[T]) run(ctx context.Context, m *Mutation, persist func(context.Context) error, rollback func(), confirm func() uint64) {
	// запрос переживает отмену контекста пользовательского действия
	bg := context.WithoutCancel(ctx)

	task := func() {
		reqCtx, cancel := c.withTimeout(bg)
		err := persist(reqCtx)
		cancel()

		if err != nil {
			rollback()
			c.logger.Warn().Err(err).
				Str("kind", string(m.kind)).
				Str("record_id", m.key).
				Msg("Mutation failed, rolled back")
			c.publish(bg, m, models.MutationRolledBack, err)
			m.finish(err)
			return
		}

		c.publish(bg, m, models.MutationConfirmed, nil)

		seq := confirm()
		refreshCtx, cancel := c.withTimeout(bg)
		items, ferr := c.fetch(refreshCtx)
		cancel()

		if ferr != nil {
			c.logger.Warn().Err(ferr).
				Str("record_id", m.key).
				Msg("Refresh after mutation failed, keeping local record until next refresh")
		} else {
			c.logRefresh(seq, c.list.applyRefresh(seq, items))
		}

		m.finish(nil)
	}

	if err := c.executor.Submit(task); err != nil {
		err = fmt.Errorf("failed to schedule mutation: %w", err)
		rollback()
		c.publish(bg, m, models.MutationRolledBack, err)
		m.finish(err)
	}
}

func (c *Controller[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller[T]) publish(ctx context.Context, m *Mutation, outcome models.MutationOutcome, cause error) {
	ev := models.NewMutationEvent(c.screen, m.kind, outcome, m.key, cause, c.clock.Now())
	if err := c.sink.Publish(ctx, ev); err != nil {
		c.logger.Error().Err(err).Msg("Failed to publish mutation event")
	}
}
