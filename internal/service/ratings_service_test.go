package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/clock"
	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRatings(b *fakeBackend) *RatingsService {
	clk := clock.NewFake(time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC))
	return NewRatingsService(b, MutationOptions{Executor: syncExecutor{}, Clock: clk}, zerolog.Nop())
}

func ratingsBackend() *fakeBackend {
	return &fakeBackend{
		teachers: []models.Teacher{
			{Name: "Dr. Arvinder Singh", Subject: "Data Structures"},
			{Name: "Prof. Meera Joshi", Subject: "Digital Electronics"},
		},
		ratings: []models.Rating{
			{ID: "r1", TeacherName: "Dr. Arvinder Singh", Subject: "Data Structures", Rating: 4, Feedback: "Good"},
			{ID: "r2", TeacherName: "Dr. Arvinder Singh", Subject: "Data Structures", Rating: 5, Feedback: "Great"},
		},
	}
}

func TestFilterTeachers(t *testing.T) {
	s := newRatings(ratingsBackend())
	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.FilterTeachers(""), 2)
	assert.Len(t, s.FilterTeachers("singh"), 1)
	assert.Len(t, s.FilterTeachers("ELECTRONICS"), 1)
	assert.Empty(t, s.FilterTeachers("history"))
}

func TestRatingsAverage(t *testing.T) {
	s := newRatings(ratingsBackend())
	require.NoError(t, s.Load(context.Background()))

	avg, n := s.Average("dr. arvinder singh")
	assert.Equal(t, 2, n)
	assert.InDelta(t, 4.5, avg, 0.001)

	avg, n = s.Average("Nobody")
	assert.Zero(t, n)
	assert.Zero(t, avg)
}

func TestSubmitRatingPrependsAndRefetches(t *testing.T) {
	b := ratingsBackend()
	s := newRatings(b)
	require.NoError(t, s.Load(context.Background()))

	var first []models.Rating
	s.Subscribe(func(r []models.Rating) {
		if first == nil {
			first = r
		}
	})

	m, err := s.Submit(context.Background(), models.Rating{
		TeacherName: "Prof. Meera Joshi", Subject: "Digital Electronics", Rating: 3, Feedback: "Fast paced",
	})
	require.NoError(t, err)
	require.NoError(t, m.Wait(context.Background()))

	require.Len(t, first, 3)
	assert.True(t, models.IsPlaceholderID(first[0].ID))
	assert.Equal(t, "2026-02-15", first[0].Date)

	ratings := s.Ratings()
	require.Len(t, ratings, 3)
	assert.Equal(t, "srv-1", ratings[0].ID)
}

func TestSubmitRatingRollback(t *testing.T) {
	b := ratingsBackend()
	s := newRatings(b)
	require.NoError(t, s.Load(context.Background()))
	before := s.Ratings()

	b.failNext = errors.New("connection reset")
	m, err := s.Submit(context.Background(), models.Rating{
		TeacherName: "Prof. Meera Joshi", Subject: "Digital Electronics", Rating: 2, Feedback: "Hard",
	})
	require.NoError(t, err)
	require.Error(t, m.Wait(context.Background()))

	assert.Equal(t, before, s.Ratings())
}

func TestSubmitRatingValidation(t *testing.T) {
	s := newRatings(ratingsBackend())

	_, err := s.Submit(context.Background(), models.Rating{TeacherName: "x", Subject: "y", Rating: 6, Feedback: "z"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Submit(context.Background(), models.Rating{TeacherName: "x", Subject: "y", Rating: 3, Feedback: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
