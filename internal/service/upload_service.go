package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/pkg/hash"
	"github.com/rs/zerolog"
)

const (
	DefaultCourse  = "GENERAL"
	DefaultPrivacy = "public"
)

type UploadService struct {
	api     FilesAPI
	author  AuthorResolver
	college string
	digest  *hash.Digest
	logger  zerolog.Logger
}

func NewUploadService(api FilesAPI, author AuthorResolver, college string, logger zerolog.Logger) *UploadService {
	return &UploadService{
		api:     api,
		author:  author,
		college: college,
		digest:  hash.New(hash.SHA256),
		logger:  logger.With().Str("service", "upload").Logger(),
	}
}

// Prepare заполняет значения по умолчанию и проверяет запрос
func (s *UploadService) Prepare(ctx context.Context, req models.UploadRequest) (models.UploadRequest, error) {
	req.FileName = filepath.Base(strings.TrimSpace(req.FileName))
	if req.FileName == "." || req.FileName == string(filepath.Separator) {
		req.FileName = ""
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" && req.FileName != "" {
		req.Title = strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	}
	if strings.TrimSpace(req.Course) == "" {
		req.Course = DefaultCourse
	}
	if req.Privacy == "" {
		req.Privacy = DefaultPrivacy
	}
	if req.Type == "" {
		req.Type = models.ResourceTypes[0]
	}
	if req.College == "" {
		req.College = s.college
	}
	if req.Author == "" && s.author != nil {
		author, err := s.author(ctx)
		if err != nil {
			return req, err
		}
		req.Author = author
	}

	if err := models.Validate(req); err != nil {
		return req, err
	}
	return req, nil
}

func (s *UploadService) Upload(ctx context.Context, req models.UploadRequest) (*models.UploadResponse, error) {
	req, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	sum, err := s.digest.Calculate(req.Content)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Upload(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("title", req.Title).
		Str("stored_as", resp.Filename).
		Str("sha256", sum).
		Int("size", len(req.Content)).
		Msg("Resource uploaded")

	return resp, nil
}
