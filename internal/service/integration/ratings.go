package integration

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

func (c *Client) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := c.getJSON(ctx, "/api/teachers", nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// ListRatings: все оценки или оценки одного преподавателя
func (c *Client) ListRatings(ctx context.Context, teacherName string) ([]models.Rating, error) {
	var query url.Values
	if teacherName != "" {
		query = url.Values{"teacher_name": {teacherName}}
	}

	var ratings []models.Rating
	if err := c.getJSON(ctx, "/api/ratings", query, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *Client) CreateRating(ctx context.Context, req models.CreateRatingRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/ratings", req, nil)
}
