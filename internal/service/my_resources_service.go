package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/rs/zerolog"
)

const myResourcesScreen = "my_resources"

// MyResourcesService: материалы, загруженные текущим пользователем
type MyResourcesService struct {
	api    ResourcesAPI
	author AuthorResolver
	ctrl   *optimistic.Controller[models.Resource]
	logger zerolog.Logger
}

func NewMyResourcesService(api ResourcesAPI, author AuthorResolver, opts MutationOptions, logger zerolog.Logger) *MyResourcesService {
	s := &MyResourcesService{
		api:    api,
		author: author,
		logger: logger.With().Str("service", myResourcesScreen).Logger(),
	}

	s.ctrl = optimistic.New(optimistic.Config[models.Resource]{
		Screen:   myResourcesScreen,
		Key:      func(r models.Resource) string { return r.ID },
		WithKey:  func(r models.Resource, id string) models.Resource { r.ID = id; return r },
		Fetch:    s.fetch,
		Executor: opts.Executor,
		Sink:     opts.Sink,
		Clock:    opts.Clock,
		Timeout:  opts.Timeout,
		Logger:   logger,
	})
	return s
}

func (s *MyResourcesService) fetch(ctx context.Context) ([]models.Resource, error) {
	author, err := s.author(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.api.ListResources(ctx, models.ResourceFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]models.Resource, 0, len(all))
	for _, r := range all {
		if strings.EqualFold(strings.TrimSpace(r.Author), author) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MyResourcesService) Load(ctx context.Context) error {
	return s.ctrl.Refresh(ctx)
}

func (s *MyResourcesService) Resources() []models.Resource {
	return s.ctrl.Items()
}

func (s *MyResourcesService) Subscribe(fn func([]models.Resource)) func() {
	return s.ctrl.List().Subscribe(fn)
}

// ResourceUpdate: изменяемые поля; nil оставляет значение как есть
type ResourceUpdate struct {
	Title       *string `json:"title,omitempty"`
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *MyResourcesService) Update(ctx context.Context, id string, upd ResourceUpdate) (*optimistic.Mutation, error) {
	cur, ok := s.ctrl.List().Get(id)
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}

	next := cur
	if upd.Title != nil {
		next.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Subject != nil {
		next.Subject = strings.TrimSpace(*upd.Subject)
	}
	if upd.Description != nil {
		next.Description = strings.TrimSpace(*upd.Description)
	}
	if err := models.Validate(next); err != nil {
		return nil, err
	}

	return s.ctrl.Update(ctx, next, func(ctx context.Context, r models.Resource) error {
		return s.api.UpdateResource(ctx, r.ID, r.UpdateRequest())
	})
}

func (s *MyResourcesService) Delete(ctx context.Context, id string) (*optimistic.Mutation, error) {
	m, err := s.ctrl.Delete(ctx, id, s.api.DeleteResource)
	if errors.Is(err, optimistic.ErrNotFound) {
		return nil, fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}
	return m, err
}
