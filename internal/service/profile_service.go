package service

import (
	"context"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

type ProfileService struct {
	api ProfileAPI
}

func NewProfileService(api ProfileAPI) *ProfileService {
	return &ProfileService{api: api}
}

func (s *ProfileService) Get(ctx context.Context) (*models.Profile, error) {
	return s.api.Profile(ctx)
}
