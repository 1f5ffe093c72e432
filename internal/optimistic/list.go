package optimistic

import (
	"sync"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

type KeyFunc[T any] func(T) string

type Listener[T any] func(items []T)

type pendingEntry[T any] struct {
	kind  models.MutationKind
	token uint64
	value T
	// base: значение на сервере до цепочки неподтверждённых мутаций этой записи
	base T
	// until: номер перезагрузки, начиная с которой запись больше не держим
	// (0, если мутация ещё в полёте)
	until uint64
}

type refreshResult int

const (
	refreshApplied refreshResult = iota
	refreshStale
	// отложена до сверки заглушек
	refreshDeferred
)

type deferredRefresh[T any] struct {
	seq   uint64
	items []T
}

// List: упорядоченный список записей экрана. Изменения сериализуются,
// слушатели получают снимок после каждого изменения.
type List[T any] struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	key      KeyFunc[T]
	prepend  bool
	items    []T

	pending    map[string]*pendingEntry[T]
	issuedSeq  uint64
	appliedSeq uint64
	deferred   *deferredRefresh[T]

	listeners map[int]Listener[T]
	nextID    int
}

func NewList[T any](key KeyFunc[T], prepend bool) *List[T] {
	return &List[T]{
		key:       key,
		prepend:   prepend,
		pending:   make(map[string]*pendingEntry[T]),
		listeners: make(map[int]Listener[T]),
	}
}

// Items возвращает копию текущего списка
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

func (l *List[T]) Get(key string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(key); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// IsPending: по ключу есть неподтверждённая мутация
func (l *List[T]) IsPending(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pending[key]
	return ok && p.until == 0
}

// Subscribe регистрирует слушателя. Слушатель не должен менять список.
func (l *List[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

func (l *List[T]) mutate(fn func() bool) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	changed := fn()
	var snapshot []T
	var listeners []Listener[T]
	if changed {
		snapshot = append([]T(nil), l.items...)
		listeners = make([]Listener[T], 0, len(l.listeners))
		for _, fn := range l.listeners {
			listeners = append(listeners, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (l *List[T]) indexOf(key string) int {
	for i, item := range l.items {
		if l.key(item) == key {
			return i
		}
	}
	return -1
}

// blocksRefresh: в ответе перезагрузки seq уже может быть сохранённая копия
// заглушки, а сопоставить их нельзя. Это так, пока ответа на создание нет
// или пока seq выдан раньше перезагрузки после подтверждения.
func (l *List[T]) blocksRefresh(seq uint64) bool {
	for key, p := range l.pending {
		if p.kind != models.MutationCreate || !models.IsPlaceholderID(key) {
			continue
		}
		if p.until == 0 || seq < p.until {
			return true
		}
	}
	return false
}

// inFlight возвращает мутацию в полёте по ключу, кроме мутации token
func (l *List[T]) inFlight(key string, token uint64) (*pendingEntry[T], bool) {
	p, ok := l.pending[key]
	if !ok || p.token == token || p.until != 0 {
		return nil, false
	}
	return p, true
}

func (l *List[T]) insertPlaceholder(item T, token uint64) {
	key := l.key(item)
	l.mutate(func() bool {
		if l.prepend {
			l.items = append([]T{item}, l.items...)
		} else {
			l.items = append(l.items, item)
		}
		l.pending[key] = &pendingEntry[T]{kind: models.MutationCreate, token: token, value: item}
		return true
	})
}

// replace подменяет запись. Если по ключу уже летит другая мутация,
// её base переходит к новой: откатываться надо к серверному значению.
func (l *List[T]) replace(next T, token uint64) (base T, ok bool) {
	key := l.key(next)
	l.mutate(func() bool {
		i := l.indexOf(key)
		if i < 0 {
			return false
		}
		base, ok = l.items[i], true
		if p, busy := l.inFlight(key, token); busy {
			base = p.base
		}
		l.items[i] = next
		l.pending[key] = &pendingEntry[T]{kind: models.MutationUpdate, token: token, value: next, base: base}
		return true
	})
	return base, ok
}

func (l *List[T]) remove(key string, token uint64) (base T, index int, ok bool) {
	index = -1
	l.mutate(func() bool {
		i := l.indexOf(key)
		if i < 0 {
			return false
		}
		base, index, ok = l.items[i], i, true
		if p, busy := l.inFlight(key, token); busy {
			base = p.base
		}
		l.items = append(l.items[:i:i], l.items[i+1:]...)
		l.pending[key] = &pendingEntry[T]{kind: models.MutationDelete, token: token, value: base, base: base}
		return true
	})
	return base, index, ok
}

// rollbackCreate убирает заглушку
func (l *List[T]) rollbackCreate(key string, token uint64) {
	l.mutate(func() bool {
		l.release(key, token)
		changed := false
		if i := l.indexOf(key); i >= 0 {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			changed = true
		}
		return l.applyDeferred() || changed
	})
}

// rollbackUpdate возвращает серверное значение записи. Если запись уже
// перехватила более новая мутация, видимое значение не трогаем.
func (l *List[T]) rollbackUpdate(base T, token uint64) {
	key := l.key(base)
	l.mutate(func() bool {
		p, ok := l.owns(key, token, base)
		if !ok {
			return false
		}
		delete(l.pending, key)
		i := l.indexOf(key)
		if i < 0 {
			return false
		}
		l.items[i] = p.base
		return true
	})
}

// rollbackDelete возвращает запись на прежнее место
func (l *List[T]) rollbackDelete(base T, index int, token uint64) {
	key := l.key(base)
	l.mutate(func() bool {
		p, ok := l.owns(key, token, base)
		if !ok {
			return false
		}
		delete(l.pending, key)
		if l.indexOf(key) >= 0 {
			return false
		}
		if index < 0 || index > len(l.items) {
			index = len(l.items)
		}
		l.items = append(l.items[:index:index], append([]T{p.base}, l.items[index:]...)...)
		return true
	})
}

// owns возвращает отметку мутации token. Если ключ уже у более новой
// мутации в полёте, ей передаётся серверное значение base.
func (l *List[T]) owns(key string, token uint64, base T) (*pendingEntry[T], bool) {
	p, ok := l.pending[key]
	if ok && p.token == token {
		return p, true
	}
	if newer, busy := l.inFlight(key, token); busy {
		newer.base = base
	}
	return nil, false
}

// release снимает отметку, если она принадлежит этой мутации
func (l *List[T]) release(key string, token uint64) {
	if p, ok := l.pending[key]; ok && p.token == token {
		delete(l.pending, key)
	}
}

// beginRefresh выдаёт номер очередной перезагрузки
func (l *List[T]) beginRefresh() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issuedSeq++
	return l.issuedSeq
}

// confirm помечает изменение или удаление подтверждённым и выдаёт номер
// перезагрузки, до применения которой локальное значение ещё держится.
// Если запись уже перехватила новая мутация, её base становится value.
func (l *List[T]) confirm(key string, token uint64, value T) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issuedSeq++
	if p, ok := l.pending[key]; ok && p.token == token {
		p.until = l.issuedSeq
	} else if newer, busy := l.inFlight(key, token); busy {
		newer.base = value
	}
	return l.issuedSeq
}

// confirmCreate меняет заглушку на запись, которую вернул сервер. Без неё
// (durable == false) заглушка держится до перезагрузки с выданным номером.
func (l *List[T]) confirmCreate(placeholder string, token uint64, record T, durable bool) uint64 {
	var seq uint64
	l.mutate(func() bool {
		l.issuedSeq++
		seq = l.issuedSeq

		p, ok := l.pending[placeholder]
		if !ok || p.token != token {
			return l.applyDeferred()
		}

		key := l.key(record)
		if !durable || key == "" {
			p.until = seq
			return l.applyDeferred()
		}

		delete(l.pending, placeholder)
		i := l.indexOf(placeholder)
		if j := l.indexOf(key); j >= 0 {
			// запись уже пришла с перезагрузкой
			if i >= 0 {
				l.items = append(l.items[:i:i], l.items[i+1:]...)
			}
		} else if i >= 0 {
			l.items[i] = record
		}
		if _, busy := l.pending[key]; !busy {
			l.pending[key] = &pendingEntry[T]{kind: models.MutationCreate, token: token, value: record, base: record, until: seq}
		}
		l.applyDeferred()
		return true
	})
	return seq
}

// applyRefresh применяет ответ сервера. Устаревший ответ (seq меньше уже
// применённого) отбрасывается, ответ, который может задвоить заглушку,
// откладывается до её сверки.
func (l *List[T]) applyRefresh(seq uint64, fresh []T) refreshResult {
	result := refreshApplied
	l.mutate(func() bool {
		if seq < l.appliedSeq || (l.deferred != nil && seq < l.deferred.seq) {
			result = refreshStale
			return false
		}
		if l.blocksRefresh(seq) {
			l.deferred = &deferredRefresh[T]{seq: seq, items: append([]T(nil), fresh...)}
			result = refreshDeferred
			return false
		}
		l.deferred = nil
		l.merge(seq, fresh)
		return true
	})
	return result
}

// applyDeferred применяет отложенный ответ, если заглушки ему больше не мешают
func (l *List[T]) applyDeferred() bool {
	d := l.deferred
	if d == nil || l.blocksRefresh(d.seq) {
		return false
	}
	l.deferred = nil
	if d.seq < l.appliedSeq {
		return false
	}
	l.merge(d.seq, d.items)
	return true
}

func (l *List[T]) merge(seq uint64, fresh []T) {
	l.appliedSeq = seq

	for key, p := range l.pending {
		if p.until != 0 && seq >= p.until {
			delete(l.pending, key)
		}
	}

	items := make([]T, 0, len(fresh)+len(l.pending))
	seen := make(map[string]bool, len(fresh))
	for _, item := range fresh {
		key := l.key(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		p, ok := l.pending[key]
		switch {
		case !ok:
			items = append(items, item)
		case p.kind == models.MutationUpdate:
			items = append(items, p.value)
		case p.kind == models.MutationDelete:
			// ещё не подтверждённое удаление
		default:
			items = append(items, item)
		}
	}

	// заглушки и подтверждённые записи, которых ещё нет в ответе,
	// сохраняем в прежнем относительном порядке
	var kept []T
	for _, item := range l.items {
		key := l.key(item)
		if p, ok := l.pending[key]; ok && p.kind == models.MutationCreate && !seen[key] {
			kept = append(kept, item)
		}
	}
	if l.prepend {
		items = append(kept, items...)
	} else {
		items = append(items, kept...)
	}

	l.items = items
}
