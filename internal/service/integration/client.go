package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrNetwork = errors.New("backend unreachable")
	ErrDecode  = errors.New("malformed backend response")
)

// StatusError: сервер ответил кодом вне 2xx
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Code, msg)
}

// IsStatus: ошибка является ответом сервера с данным кодом
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// TokenSource отдаёт заголовок Authorization текущей сессии
type TokenSource interface {
	Authorization() (string, error)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client: REST-клиент бэкенда Campus Resource Hub
type Client struct {
	baseURL    string
	retryCount int
	retryDelay time.Duration
	tokens     TokenSource
	client     *http.Client
	logger     zerolog.Logger
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		retryCount: opts.RetryCount,
		retryDelay: opts.RetryDelay,
		tokens:     opts.Tokens,
		client:     hc,
		logger:     opts.Logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// requireAuth: без токена запрос не отправляется
	requireAuth bool
}

// do выполняет запрос. GET повторяется при сетевых ошибках и 5xx с линейной
// задержкой, изменяющие запросы отправляются один раз.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	auth := ""
	if c.tokens != nil {
		if header, err := c.tokens.Authorization(); err == nil {
			auth = header
		} else if r.requireAuth {
			return nil, err
		}
	} else if r.requireAuth {
		return nil, errors.New("no session configured")
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.retryCount
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			c.logger.Warn().
				Int("attempt", i).
				Str("path", r.path).
				Err(lastErr).
				Msg("Retrying backend request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i)):
			}
		}

		var body io.Reader
		if r.body != nil {
			body = bytes.NewReader(r.body)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		req.Header.Set("Accept", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrNetwork, err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		lastErr = &StatusError{Method: r.method, Path: r.path, Code: resp.StatusCode, Body: detail(data)}
		if resp.StatusCode < 500 {
			break
		}
	}

	c.logger.Error().Err(lastErr).Str("method", r.method).Str("path", r.path).Msg("Backend request failed")
	return nil, lastErr
}

func (c *Client) doJSON(ctx context.Context, r request, out interface{}) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, r.method, r.path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.doJSON(ctx, request{method: method, path: path, body: body, contentType: "application/json"}, out)
}

// detail достаёт поле detail из JSON-ошибки бэкенда, иначе возвращает тело как есть
func detail(body []byte) string {
	var payload struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			return d
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(body)
}
