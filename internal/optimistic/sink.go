package optimistic

import (
	"context"
	"errors"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
)

// Sink получает итоги мутаций (логи, брокер)
type Sink interface {
	Publish(ctx context.Context, event models.MutationEvent) error
}

type NopSink struct{}

func (NopSink) Publish(context.Context, models.MutationEvent) error { return nil }

type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, ev models.MutationEvent) error {
	e := s.logger.Info()
	if ev.Outcome == models.MutationRolledBack {
		e = s.logger.Warn().Str("error", ev.Error)
	}
	e.Str("screen", ev.Screen).
		Str("kind", string(ev.Kind)).
		Str("outcome", string(ev.Outcome)).
		Str("record_id", ev.RecordID).
		Msg("Mutation reconciled")
	return nil
}

// MultiSink рассылает событие всем sink'ам и собирает ошибки
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, ev models.MutationEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
