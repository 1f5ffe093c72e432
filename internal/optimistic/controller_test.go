package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string
	Title string
}

// manualExecutor держит задачи до явного вызова runNext
type manualExecutor struct {
	mu    sync.Mutex
	tasks []worker.Task
}

func (e *manualExecutor) Submit(task worker.Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
	return nil
}

func (e *manualExecutor) runNext(t *testing.T) {
	t.Helper()
	e.mu.Lock()
	require.NotEmpty(t, e.tasks)
	task := e.tasks[0]
	e.tasks = e.tasks[1:]
	e.mu.Unlock()
	task()
}

// recorder копит итоги мутаций
type recorder struct {
	mu     sync.Mutex
	events []models.MutationEvent
}

func (r *recorder) Publish(_ context.Context, ev models.MutationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Events() []models.MutationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MutationEvent(nil), r.events...)
}

type failingExecutor struct{}

func (failingExecutor) Submit(worker.Task) error { return worker.ErrPoolStopped }

// fakeBackend: источник истины для тестов
type fakeBackend struct {
	mu       sync.Mutex
	records  []record
	nextID   int
	fail     error
	fetchErr error
}

func (b *fakeBackend) fetch(context.Context) ([]record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return append([]record(nil), b.records...), nil
}

func (b *fakeBackend) setFetchErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchErr = err
}

// create сохраняет запись и возвращает её с серверным id
func (b *fakeBackend) create(_ context.Context, r record) (record, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return r, false, b.fail
	}
	b.nextID++
	r.ID = fmt.Sprintf("%d", b.nextID)
	b.records = append(b.records, r)
	return r, true, nil
}

// createSilently сохраняет запись, но id не возвращает
func (b *fakeBackend) createSilently(ctx context.Context, r record) (record, bool, error) {
	_, _, err := b.create(ctx, r)
	return r, false, err
}

func (b *fakeBackend) update(_ context.Context, r record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	for i := range b.records {
		if b.records[i].ID == r.ID {
			b.records[i] = r
		}
	}
	return nil
}

func (b *fakeBackend) remove(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	for i := range b.records {
		if b.records[i].ID == id {
			b.records = append(b.records[:i], b.records[i+1:]...)
			break
		}
	}
	return nil
}

func newTestController(t *testing.T, backend *fakeBackend, exec worker.Executor, sink Sink, prepend bool) *Controller[record] {
	t.Helper()
	c := New(Config[record]{
		Screen:   "test",
		Key:      func(r record) string { return r.ID },
		WithKey:  func(r record, id string) record { r.ID = id; return r },
		Fetch:    backend.fetch,
		Prepend:  prepend,
		Executor: exec,
		Sink:     sink,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func titles(items []record) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.Title)
	}
	return out
}

func TestCreateAppearsBeforeResponse(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	var notified [][]record
	c.List().Subscribe(func(items []record) { notified = append(notified, items) })

	m := c.Create(context.Background(), record{Title: "second"}, backend.create)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[1].Title)
	assert.True(t, models.IsPlaceholderID(items[1].ID))
	assert.Equal(t, m.Placeholder(), items[1].ID)
	assert.True(t, c.List().IsPending(m.Key()))
	require.Len(t, notified, 1)

	select {
	case <-m.Done():
		t.Fatal("mutation finished before the request ran")
	default:
	}
}

func TestCreatePrepend(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "old"}}}
	c := newTestController(t, backend, &manualExecutor{}, nil, true)

	c.Create(context.Background(), record{Title: "new"}, backend.create)

	assert.Equal(t, []string{"new", "old"}, titles(c.Items()))
}

func TestCreateFailureRestoresList(t *testing.T) {
	backend := &fakeBackend{
		records: []record{{ID: "a", Title: "first"}, {ID: "b", Title: "second"}},
		fail:    errors.New("500 Internal Server Error"),
	}
	exec := &manualExecutor{}
	rec := &recorder{}
	c := newTestController(t, backend, exec, rec, false)
	before := c.Items()

	m := c.Create(context.Background(), record{Title: "third"}, backend.create)
	require.Len(t, c.Items(), 3)

	exec.runNext(t)

	require.Error(t, m.Wait(context.Background()))
	assert.Equal(t, before, c.Items())
	assert.False(t, c.List().IsPending(m.Key()))

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.MutationRolledBack, events[0].Outcome)
	assert.Equal(t, models.MutationCreate, events[0].Kind)
	assert.Contains(t, events[0].Error, "500")
}

func TestCreateSuccessNeverDuplicates(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	exec := &manualExecutor{}
	rec := &recorder{}
	c := newTestController(t, backend, exec, rec, false)

	m := c.Create(context.Background(), record{Title: "second"}, backend.create)
	exec.runNext(t)

	require.NoError(t, m.Wait(context.Background()))
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, []string{"first", "second"}, titles(items))
	for _, r := range items {
		assert.False(t, models.IsPlaceholderID(r.ID))
	}

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.MutationConfirmed, events[0].Outcome)
}

func TestPlaceholderSurvivesRefresh(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	m := c.Create(context.Background(), record{Title: "pending"}, backend.create)
	require.NoError(t, c.Refresh(context.Background()))

	_, ok := c.List().Get(m.Key())
	assert.True(t, ok)
	assert.Len(t, c.Items(), 2)
}

func TestUpdateFailureRestoresPreviousValue(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}, {ID: "b", Title: "second"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	backend.fail = errors.New("connection refused")
	m, err := c.Update(context.Background(), record{ID: "b", Title: "edited"}, backend.update)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "edited"}, titles(c.Items()))

	exec.runNext(t)

	require.Error(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"first", "second"}, titles(c.Items()))
}

func TestRefreshDuringCreateNeverDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		durable  bool
		wantIDs  []string
		finalIDs []string
	}{
		{name: "server returns the saved record", durable: true, wantIDs: []string{"a", "1"}, finalIDs: []string{"a", "1"}},
		{name: "server returns no id", durable: false, finalIDs: []string{"a", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
			exec := &manualExecutor{}
			c := newTestController(t, backend, exec, nil, false)
			ctx := context.Background()

			save := backend.create
			if !tt.durable {
				save = backend.createSilently
			}

			var during []string
			m := c.Create(ctx, record{Title: "second"}, func(ctx context.Context, r record) (record, bool, error) {
				saved, durable, err := save(ctx, r)
				// экран перезагружается, пока ответ на POST ещё не обработан
				require.NoError(t, c.Refresh(ctx))
				during = titles(c.Items())
				// и перезагрузка после подтверждения не проходит
				backend.setFetchErr(errors.New("503 Service Unavailable"))
				return saved, durable, err
			})

			exec.runNext(t)
			require.NoError(t, m.Wait(ctx))

			assert.Equal(t, []string{"first", "second"}, during)
			items := c.Items()
			assert.Equal(t, []string{"first", "second"}, titles(items))
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, []string{items[0].ID, items[1].ID})
			} else {
				assert.True(t, models.IsPlaceholderID(items[1].ID))
			}

			backend.setFetchErr(nil)
			require.NoError(t, c.Refresh(ctx))
			items = c.Items()
			assert.Equal(t, []string{"first", "second"}, titles(items))
			assert.Equal(t, tt.finalIDs, []string{items[0].ID, items[1].ID})
		})
	}
}

func TestCreateSwapsPlaceholderForSavedRecord(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)
	backend.setFetchErr(errors.New("connection reset"))

	m := c.Create(context.Background(), record{Title: "second"}, backend.create)
	exec.runNext(t)

	require.NoError(t, m.Wait(context.Background()))
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[1].ID)
	assert.False(t, c.List().IsPending(m.Key()))
}

func TestRacingUpdatesBothFail(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "A"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)
	backend.fail = errors.New("500 Internal Server Error")
	ctx := context.Background()

	first, err := c.Update(ctx, record{ID: "a", Title: "B"}, backend.update)
	require.NoError(t, err)
	second, err := c.Update(ctx, record{ID: "a", Title: "C"}, backend.update)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, titles(c.Items()))

	exec.runNext(t)
	require.Error(t, first.Wait(ctx))
	// запись уже принадлежит второй мутации
	assert.Equal(t, []string{"C"}, titles(c.Items()))
	assert.True(t, c.List().IsPending("a"))

	exec.runNext(t)
	require.Error(t, second.Wait(ctx))
	assert.Equal(t, []string{"A"}, titles(c.Items()))
	assert.False(t, c.List().IsPending("a"))

	stored, err := backend.fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, titles(stored), titles(c.Items()))
}

func TestRacingUpdatesFirstSucceedsSecondFails(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "A"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)
	ctx := context.Background()

	first, err := c.Update(ctx, record{ID: "a", Title: "B"}, backend.update)
	require.NoError(t, err)
	second, err := c.Update(ctx, record{ID: "a", Title: "C"}, func(context.Context, record) error {
		return errors.New("409 Conflict")
	})
	require.NoError(t, err)

	exec.runNext(t)
	require.NoError(t, first.Wait(ctx))
	assert.Equal(t, []string{"C"}, titles(c.Items()))

	exec.runNext(t)
	require.Error(t, second.Wait(ctx))
	assert.Equal(t, []string{"B"}, titles(c.Items()))
}

func TestDeleteAfterFailedUpdateRestoresServerValue(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "A"}, {ID: "b", Title: "other"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)
	backend.fail = errors.New("503 Service Unavailable")
	ctx := context.Background()

	upd, err := c.Update(ctx, record{ID: "a", Title: "B"}, backend.update)
	require.NoError(t, err)
	del, err := c.Delete(ctx, "a", backend.remove)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, titles(c.Items()))

	exec.runNext(t)
	require.Error(t, upd.Wait(ctx))
	assert.Equal(t, []string{"other"}, titles(c.Items()))

	exec.runNext(t)
	require.Error(t, del.Wait(ctx))
	assert.Equal(t, []string{"A", "other"}, titles(c.Items()))
}

func TestUpdateSuccessRefetches(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	m, err := c.Update(context.Background(), record{ID: "a", Title: "edited"}, backend.update)
	require.NoError(t, err)
	exec.runNext(t)

	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"edited"}, titles(c.Items()))
	assert.False(t, c.List().IsPending("a"))
}

func TestDeleteFailureReinsertsAtIndex(t *testing.T) {
	backend := &fakeBackend{records: []record{
		{ID: "a", Title: "first"}, {ID: "b", Title: "second"}, {ID: "c", Title: "third"},
	}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	backend.fail = errors.New("forbidden")
	m, err := c.Delete(context.Background(), "b", backend.remove)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, titles(c.Items()))

	exec.runNext(t)

	require.Error(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"first", "second", "third"}, titles(c.Items()))
}

func TestDeleteHiddenFromRefreshWhileInFlight(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}, {ID: "b", Title: "second"}}}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	m, err := c.Delete(context.Background(), "a", backend.remove)
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"second"}, titles(c.Items()))

	exec.runNext(t)
	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"second"}, titles(c.Items()))
}

func TestPlaceholderCannotBeMutated(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(t, backend, &manualExecutor{}, nil, false)

	m := c.Create(context.Background(), record{Title: "x"}, backend.create)

	_, err := c.Update(context.Background(), record{ID: m.Key(), Title: "y"}, backend.update)
	assert.ErrorIs(t, err, ErrPlaceholder)

	_, err = c.Delete(context.Background(), m.Key(), backend.remove)
	assert.ErrorIs(t, err, ErrPlaceholder)
}

func TestMissingRecord(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(t, backend, &manualExecutor{}, nil, false)

	_, err := c.Update(context.Background(), record{ID: "nope"}, backend.update)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Delete(context.Background(), "nope", backend.remove)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitFailureRollsBack(t *testing.T) {
	backend := &fakeBackend{records: []record{{ID: "a", Title: "first"}}}
	c := newTestController(t, backend, failingExecutor{}, nil, false)

	m := c.Create(context.Background(), record{Title: "second"}, backend.create)

	assert.ErrorIs(t, m.Err(), worker.ErrPoolStopped)
	assert.Equal(t, []string{"first"}, titles(c.Items()))
}

func TestStaleRefreshDiscarded(t *testing.T) {
	l := NewList(func(r record) string { return r.ID }, false)

	older := l.beginRefresh()
	newer := l.beginRefresh()

	assert.Equal(t, refreshApplied, l.applyRefresh(newer, []record{{ID: "n", Title: "newer"}}))
	assert.Equal(t, refreshStale, l.applyRefresh(older, []record{{ID: "o", Title: "older"}}))
	assert.Equal(t, []string{"newer"}, titles(l.Items()))
}

func TestRacingCreatesReconcileIndependently(t *testing.T) {
	backend := &fakeBackend{}
	exec := &manualExecutor{}
	c := newTestController(t, backend, exec, nil, false)

	ok := c.Create(context.Background(), record{Title: "ok"}, backend.create)
	bad := c.Create(context.Background(), record{Title: "bad"}, func(_ context.Context, r record) (record, bool, error) {
		return r, false, errors.New("rejected")
	})
	require.Len(t, c.Items(), 2)

	exec.runNext(t)
	require.NoError(t, ok.Wait(context.Background()))
	// вторая заглушка ещё в полёте и переживает перезагрузку первой мутации
	assert.Equal(t, []string{"ok", "bad"}, titles(c.Items()))

	exec.runNext(t)
	require.Error(t, bad.Wait(context.Background()))
	assert.Equal(t, []string{"ok"}, titles(c.Items()))
}

func TestConcurrentMutationsWithPool(t *testing.T) {
	backend := &fakeBackend{}
	pool := worker.NewWorkerPool(4, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop()

	c := newTestController(t, backend, pool, nil, false)

	var muts []*Mutation
	for i := 0; i < 10; i++ {
		muts = append(muts, c.Create(context.Background(), record{Title: fmt.Sprintf("r%d", i)}, backend.create))
	}
	for _, m := range muts {
		require.NoError(t, m.Wait(context.Background()))
	}

	require.NoError(t, c.Refresh(context.Background()))
	items := c.Items()
	assert.Len(t, items, 10)
	for _, r := range items {
		assert.False(t, models.IsPlaceholderID(r.ID))
	}
}
