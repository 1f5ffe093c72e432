package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/service/integration"
	"github.com/Guneet-syan/Neural-Breach/internal/worker"
)

// syncExecutor выполняет задачу сразу в вызывающей горутине
type syncExecutor struct{}

func (syncExecutor) Submit(task worker.Task) error {
	task()
	return nil
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

type fakeBackend struct {
	mu        sync.Mutex
	events    []models.Event
	exams     []models.Exam
	examsErr  error
	teachers  []models.Teacher
	ratings   []models.Rating
	resources []models.Resource
	files     map[string]string
	uploads   []models.UploadRequest
	failNext  error
	queries   []models.ResourceFilter
	nextID    int
}

func (b *fakeBackend) takeFailure() error {
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *fakeBackend) id() string {
	b.nextID++
	return fmt.Sprintf("srv-%d", b.nextID)
}

func (b *fakeBackend) ListEvents(context.Context) ([]models.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Event(nil), b.events...), nil
}

func (b *fakeBackend) CreateEvent(_ context.Context, req models.CreateEventRequest) (*models.CreateEventResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	ev := models.Event{ID: b.id(), Title: req.Title, Type: req.Type, Date: req.Date, Status: req.Status}
	b.events = append(b.events, ev)
	return &models.CreateEventResponse{Message: "ok", Event: ev}, nil
}

func (b *fakeBackend) ListExams(context.Context) ([]models.Exam, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.examsErr != nil {
		return nil, b.examsErr
	}
	return append([]models.Exam(nil), b.exams...), nil
}

func (b *fakeBackend) ListTeachers(context.Context) ([]models.Teacher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Teacher(nil), b.teachers...), nil
}

func (b *fakeBackend) ListRatings(_ context.Context, teacher string) ([]models.Rating, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Rating
	// сервер отдаёт новые оценки первыми
	for i := len(b.ratings) - 1; i >= 0; i-- {
		if teacher == "" || b.ratings[i].TeacherName == teacher {
			out = append(out, b.ratings[i])
		}
	}
	return out, nil
}

func (b *fakeBackend) CreateRating(_ context.Context, req models.CreateRatingRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFailure(); err != nil {
		return err
	}
	b.ratings = append(b.ratings, models.Rating{
		ID: b.id(), TeacherName: req.TeacherName, Subject: req.Subject,
		Rating: req.Rating, Feedback: req.Feedback, UserEmail: req.UserEmail, Date: req.Date,
	})
	return nil
}

func (b *fakeBackend) ListResources(_ context.Context, f models.ResourceFilter) ([]models.Resource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, f)
	var out []models.Resource
	for _, r := range b.resources {
		if len(f.Courses) > 0 && !contains(f.Courses, r.Course) {
			continue
		}
		if len(f.Types) > 0 && !contains(f.Types, r.Type) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *fakeBackend) UpdateResource(_ context.Context, id string, req models.UpdateResourceRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFailure(); err != nil {
		return err
	}
	for i := range b.resources {
		if b.resources[i].ID == id {
			b.resources[i].Title = req.Title
			b.resources[i].Subject = req.Subject
			b.resources[i].Description = req.Description
			return nil
		}
	}
	return &integration.StatusError{Code: 404}
}

func (b *fakeBackend) DeleteResource(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFailure(); err != nil {
		return err
	}
	for i := range b.resources {
		if b.resources[i].ID == id {
			b.resources = append(b.resources[:i], b.resources[i+1:]...)
			return nil
		}
	}
	return &integration.StatusError{Code: 404}
}

func (b *fakeBackend) Upload(_ context.Context, req models.UploadRequest) (*models.UploadResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFailure(); err != nil {
		return nil, err
	}
	b.uploads = append(b.uploads, req)
	return &models.UploadResponse{Message: "ok", Filename: "stored-" + req.FileName, Title: req.Title, Course: req.Course, Type: req.Type}, nil
}

func (b *fakeBackend) Download(_ context.Context, filename string) (*integration.Download, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.files[filename]
	if !ok {
		return nil, &integration.StatusError{Code: 404}
	}
	return &integration.Download{
		Body:        io.NopCloser(strings.NewReader(content)),
		ContentType: "application/pdf",
		Size:        int64(len(content)),
	}, nil
}

func (b *fakeBackend) Profile(context.Context) (*models.Profile, error) {
	return &models.Profile{Email: "asha@campus.edu", Name: "Asha"}, nil
}

func contains(values []string, v string) bool {
	for _, cur := range values {
		if cur == v {
			return true
		}
	}
	return false
}
