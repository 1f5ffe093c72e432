package models

import (
	"fmt"
	"time"
)

var examDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

type Exam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// ParseExamDate понимает RFC3339 и даты без зоны (их читаем в loc)
func ParseExamDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range examDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid exam date %q", value)
}

// ExamTitlePrefix отличает экзамены от обычных событий в календаре
const ExamTitlePrefix = "EXAM: "

// AsEvent превращает экзамен в событие календаря с id вида exam-<id>
func (e Exam) AsEvent(loc *time.Location) Event {
	date := e.Date
	if t, err := ParseExamDate(e.Date, loc); err == nil {
		date = t.Format(DateLayout)
	}
	return Event{
		ID:     "exam-" + e.ID,
		Title:  ExamTitlePrefix + e.Name,
		Type:   "Exam",
		Date:   date,
		Status: EventStatusDue,
	}
}
