package integration

import (
	"context"
	"net/http"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.getJSON(ctx, "/api/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.CreateEventResponse, error) {
	var resp models.CreateEventResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListExams(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := c.getJSON(ctx, "/api/exams", nil, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}
