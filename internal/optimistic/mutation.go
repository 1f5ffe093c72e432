package optimistic

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

var mutationTokens uint64

// Mutation: хэндл отправленной мутации. Done закрывается после сверки
// со списком (откат или перезагрузка).
type Mutation struct {
	kind  models.MutationKind
	key   string
	token uint64

	once sync.Once
	done chan struct{}
	err  error
}

func newMutation(kind models.MutationKind, key string) *Mutation {
	return &Mutation{
		kind:  kind,
		key:   key,
		token: atomic.AddUint64(&mutationTokens, 1),
		done:  make(chan struct{}),
	}
}

func (m *Mutation) Kind() models.MutationKind {
	return m.kind
}

// Key: id записи; для создания это id-заглушка
func (m *Mutation) Key() string {
	return m.key
}

func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Err: ошибка запроса к серверу, валидна после Done
func (m *Mutation) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}

func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutation) finish(err error) {
	m.once.Do(func() {
		m.err = err
		close(m.done)
	})
}

// Placeholder: id-заглушка созданной записи, пусто для других мутаций
func (m *Mutation) Placeholder() string {
	if m.kind != models.MutationCreate {
		return ""
	}
	return m.key
}
