package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrPoolStopped = errors.New("worker pool stopped")

type Task func()

// Executor запускает фоновые эффекты (сетевые запросы мутаций, перезагрузки списков)
type Executor interface {
	Submit(task Task) error
}

// Go: простейший Executor: каждая задача в своей горутине
type Go struct{}

func (Go) Submit(task Task) error {
	go task()
	return nil
}

type WorkerPool struct {
	tasks         chan Task
	wg            sync.WaitGroup
	activeWorkers int
	maxWorkers    int
	submitTimeout time.Duration
	logger        zerolog.Logger
	// mu защищает started/stopped и закрытие канала, statsMu защищает счётчик активных воркеров
	mu      sync.RWMutex
	statsMu sync.Mutex
	started bool
	stopped bool
}

func NewWorkerPool(maxWorkers int, logger zerolog.Logger) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		tasks:         make(chan Task, maxWorkers*10),
		maxWorkers:    maxWorkers,
		submitTimeout: time.Second,
		logger:        logger,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return nil
	}
	wp.started = true

	wp.logger.Debug().Int("max_workers", wp.maxWorkers).Msg("Starting worker pool")

	for i := 0; i < wp.maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	return nil
}

// Stop дожидается выполнения уже поставленных задач
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return nil
	}
	wp.stopped = true
	close(wp.tasks)
	wp.mu.Unlock()

	wp.wg.Wait()

	wp.logger.Debug().Msg("Worker pool stopped")
	return nil
}

func (wp *WorkerPool) Submit(task Task) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrPoolStopped
	}

	select {
	case wp.tasks <- task:
		return nil
	default:
		wp.logger.Warn().Msg("Worker pool task queue is full")
	}

	select {
	case wp.tasks <- task:
		return nil
	case <-time.After(wp.submitTimeout):
		wp.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
		return errors.New("worker pool queue is full")
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.tasks {
		wp.statsMu.Lock()
		wp.activeWorkers++
		wp.statsMu.Unlock()

		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.logger.Error().
						Int("worker_id", id).
						Interface("panic", r).
						Msg("Worker recovered from panic")
				}

				wp.statsMu.Lock()
				wp.activeWorkers--
				wp.statsMu.Unlock()
			}()

			task()
		}()
	}
}

func (wp *WorkerPool) GetStats() map[string]interface{} {
	wp.statsMu.Lock()
	defer wp.statsMu.Unlock()

	return map[string]interface{}{
		"active_workers": wp.activeWorkers,
		"max_workers":    wp.maxWorkers,
		"queue_length":   len(wp.tasks),
		"queue_capacity": cap(wp.tasks),
	}
}
