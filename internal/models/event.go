package models

import (
	"time"
)

const DateLayout = "2006-01-02"

type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusDue      EventStatus = "due"
	EventStatusLate     EventStatus = "late"
)

func (s EventStatus) String() string {
	return string(s)
}

type Event struct {
	ID     string      `json:"id,omitempty"`
	Title  string      `json:"title" validate:"required,max=200"`
	Type   string      `json:"type" validate:"required,max=50"`
	Date   string      `json:"date" validate:"required,datetime=2006-01-02"`
	Status EventStatus `json:"status,omitempty"`
}

// CreateEventRequest: тело POST /api/events, id сервер назначает сам
type CreateEventRequest struct {
	Title  string      `json:"title"`
	Type   string      `json:"type"`
	Date   string      `json:"date"`
	Status EventStatus `json:"status"`
}

type CreateEventResponse struct {
	Message string `json:"message"`
	Event   Event  `json:"event"`
}

// DeriveStatus: после сегодняшнего дня upcoming, сегодня due, раньше late
func DeriveStatus(date string, today time.Time) EventStatus {
	day, err := time.ParseInLocation(DateLayout, date, today.Location())
	if err != nil {
		return EventStatusUpcoming
	}

	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	switch {
	case day.After(start):
		return EventStatusUpcoming
	case day.Equal(start):
		return EventStatusDue
	default:
		return EventStatusLate
	}
}
