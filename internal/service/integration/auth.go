package integration

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

// Login: OAuth2 password flow: form-encoded username и password
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	form := url.Values{
		"username": {creds.Email},
		"password": {creds.Password},
	}

	var tok models.Token
	err := c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/api/token",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	var resp models.SignupResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/api/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/api/profile", requireAuth: true}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
