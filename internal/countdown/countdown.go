// Package countdown считает обратный отсчёт до экзаменов.
package countdown

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
)

const (
	Finished = "Exam Finished"
	Interval = time.Second
	// ExamWindowDays: экзамен ближе этого числа дней включает режим сессии
	ExamWindowDays = 14
)

// Format выводит остаток в виде "1d 0h 0m 0s"
func Format(remaining time.Duration) string {
	if remaining <= 0 {
		return Finished
	}

	total := int64(remaining / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// Entry: экзамен с разобранной датой
type Entry struct {
	Exam models.Exam
	At   time.Time
}

// Entries разбирает даты экзаменов, неразборчивые пропускаются
func Entries(exams []models.Exam, loc *time.Location, logger zerolog.Logger) []Entry {
	out := make([]Entry, 0, len(exams))
	for _, e := range exams {
		at, err := models.ParseExamDate(e.Date, loc)
		if err != nil {
			logger.Warn().Err(err).Str("exam_id", e.ID).Msg("Skipping exam with invalid date")
			continue
		}
		out = append(out, Entry{Exam: e, At: at})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Snapshot считает отображение для каждого экзамена на момент now
func Snapshot(entries []Entry, now time.Time) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Exam.ID] = Format(e.At.Sub(now))
	}
	return out
}

// InExamWindow: хотя бы один экзамен в пределах days дней от today в любую сторону
func InExamWindow(entries []Entry, today time.Time, days int) bool {
	window := time.Duration(days) * 24 * time.Hour
	for _, e := range entries {
		diff := e.At.Sub(today)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return true
		}
	}
	return false
}

// Ticker раз в секунду пересчитывает отсчёт и отдаёт его в колбэк
type Ticker struct {
	clock    clock.Clock
	entries  []Entry
	onTick   func(map[string]string)
	interval time.Duration

	// callMu держится на время колбэка, Stop ждёт его завершения
	callMu  sync.Mutex
	mu      sync.Mutex
	timer   clock.Timer
	running bool
}

func NewTicker(clk clock.Clock, entries []Entry, onTick func(map[string]string)) *Ticker {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Ticker{
		clock:    clk,
		entries:  entries,
		onTick:   onTick,
		interval: Interval,
	}
}

// Start сразу публикует текущий отсчёт и планирует следующий тик
func (t *Ticker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.tick()
}

// Stop снимает таймер и дожидается текущего колбэка; после возврата
// колбэк больше не вызывается. Из самого колбэка Stop не вызывать.
func (t *Ticker) Stop() {
	t.callMu.Lock()
	defer t.callMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Ticker) tick() {
	t.callMu.Lock()
	defer t.callMu.Unlock()

	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	snapshot := Snapshot(t.entries, t.clock.Now())
	t.timer = t.clock.AfterFunc(t.interval, t.tick)
	t.mu.Unlock()

	t.onTick(snapshot)
}
