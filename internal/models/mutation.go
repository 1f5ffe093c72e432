package models

import (
	"strings"
	"time"
)

const PlaceholderPrefix = "tmp-"

// IsPlaceholderID: id выдан клиентом и не является настоящим id сервера
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

type MutationOutcome string

const (
	MutationConfirmed  MutationOutcome = "confirmed"
	MutationRolledBack MutationOutcome = "rolled_back"
)

// MutationEvent: итог оптимистичной мутации, уходит в sink (лог, RabbitMQ)
type MutationEvent struct {
	Screen    string          `json:"screen"`
	Kind      MutationKind    `json:"kind"`
	Outcome   MutationOutcome `json:"outcome"`
	RecordID  string          `json:"record_id"`
	Error     string          `json:"error,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMutationEvent(screen string, kind MutationKind, outcome MutationOutcome, recordID string, err error, at time.Time) MutationEvent {
	ev := MutationEvent{
		Screen:    screen,
		Kind:      kind,
		Outcome:   outcome,
		RecordID:  recordID,
		Timestamp: at.Unix(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
