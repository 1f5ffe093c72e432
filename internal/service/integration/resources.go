package integration

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

var errEmptyID = errors.New("resource id is required")

func (c *Client) ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	var resources []models.Resource
	if err := c.getJSON(ctx, "/api/resources", filter.Values(), &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *Client) UpdateResource(ctx context.Context, id string, req models.UpdateResourceRequest) error {
	if id == "" {
		return errEmptyID
	}
	return c.sendJSON(ctx, http.MethodPut, "/api/resources/"+url.PathEscape(id), req, nil)
}

func (c *Client) DeleteResource(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	return c.doJSON(ctx, request{method: http.MethodDelete, path: "/api/resources/" + url.PathEscape(id)}, nil)
}
