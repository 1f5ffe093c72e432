package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
)

// Upload отправляет файл и метаданные multipart-запросом
func (c *Client) Upload(ctx context.Context, req models.UploadRequest) (*models.UploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(req.Content)); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	fields := []struct{ name, value string }{
		{"title", req.Title},
		{"subject", req.Subject},
		{"course", req.Course},
		{"author", req.Author},
		{"type", req.Type},
		{"privacy", req.Privacy},
		{"semester", req.Semester},
		{"year", req.Year},
		{"college", req.College},
		{"description", req.Description},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var resp models.UploadResponse
	err = c.doJSON(ctx, request{
		method:      http.MethodPost,
		path:        "/api/upload",
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("filename", resp.Filename).
		Str("title", resp.Title).
		Int("size", len(req.Content)).
		Msg("File uploaded successfully")

	return &resp, nil
}

// Download открывает поток файла; вызывающий закрывает Body
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

func (c *Client) Download(ctx context.Context, filename string) (*Download, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/api/download/" + url.PathEscape(filename)})
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}
