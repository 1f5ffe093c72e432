package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		date string
		want EventStatus
	}{
		{"2026-02-18", EventStatusUpcoming},
		{"2026-02-17", EventStatusDue},
		{"2026-02-16", EventStatusLate},
		{"not-a-date", EventStatusUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.date, today))
		})
	}
}

func TestParseExamDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	got, err := ParseExamDate("2026-02-23T10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 23, 10, 0, 0, 0, loc), got)

	got, err = ParseExamDate("2026-03-01T00:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ParseExamDate("soon", loc)
	assert.Error(t, err)
}

func TestExamAsEvent(t *testing.T) {
	ev := Exam{ID: "2", Name: "Digital Systems Lab Exam", Date: "2026-03-05T14:00:00"}.AsEvent(time.UTC)

	assert.Equal(t, Event{
		ID:     "exam-2",
		Title:  "EXAM: Digital Systems Lab Exam",
		Type:   "Exam",
		Date:   "2026-03-05",
		Status: EventStatusDue,
	}, ev)
}

func TestResourceFilterValues(t *testing.T) {
	t.Run("course and type only", func(t *testing.T) {
		f := ResourceFilter{Courses: []string{"CS101"}, Types: []string{"Notes"}}
		assert.Equal(t, "course=CS101&type=Notes", f.Values().Encode())
	})

	t.Run("multi-select is comma-joined", func(t *testing.T) {
		f := ResourceFilter{Courses: []string{"CS101", "CS202"}, Types: []string{"Notes", "PYQ"}}
		v := f.Values()
		assert.Equal(t, "CS101,CS202", v.Get("course"))
		assert.Equal(t, "Notes,PYQ", v.Get("type"))
		assert.Len(t, v, 2)
	})

	t.Run("all fields", func(t *testing.T) {
		f := ResourceFilter{Subjects: []string{"Maths"}, Semester: 3, Year: 2025, Search: "  graphs ", Privacy: "public"}
		assert.Equal(t, "privacy=public&search=graphs&semester=3&subject=Maths&year=2025", f.Values().Encode())
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, ResourceFilter{Search: "   "}.IsEmpty())
	})
}

func TestResourceFilterClone(t *testing.T) {
	f := ResourceFilter{Courses: []string{"CS101"}}
	c := f.Clone()
	c.Courses[0] = "EC201"
	assert.Equal(t, "CS101", f.Courses[0])
}

func TestValidateRating(t *testing.T) {
	valid := Rating{TeacherName: "Dr. Arvinder Singh", Subject: "Data Structures", Rating: 5, Feedback: "Clear lectures"}
	assert.NoError(t, Validate(valid))

	tooHigh := valid
	tooHigh.Rating = 6
	err := Validate(tooHigh)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "rating must be at most 5")

	missing := Rating{Rating: 3}
	err = Validate(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teachername is required")
	assert.Contains(t, err.Error(), "feedback is required")
}

func TestValidateEventDate(t *testing.T) {
	err := Validate(Event{Title: "Lab", Type: "Assignment", Date: "15/02/2026"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date must match")

	assert.NoError(t, Validate(Event{Title: "Lab", Type: "Assignment", Date: "2026-02-15"}))
}

func TestMutationEvent(t *testing.T) {
	at := time.Unix(1700000000, 0)
	ev := NewMutationEvent("ratings", MutationCreate, MutationRolledBack, "tmp-1", errors.New("boom"), at)

	assert.Equal(t, "boom", ev.Error)
	assert.EqualValues(t, 1700000000, ev.Timestamp)
	assert.True(t, IsPlaceholderID(ev.RecordID))
	assert.False(t, IsPlaceholderID("65f0c1"))
}
