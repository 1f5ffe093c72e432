// Package proxy отдаёт файлы бэкенда через локальный сервер, подставляя
// токен текущей сессии.
package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/service/integration"
	"github.com/rs/zerolog"
)

const downloadPrefix = "/api/download/"

type Proxy struct {
	target  *url.URL
	proxy   *httputil.ReverseProxy
	tokens  integration.TokenSource
	logger  zerolog.Logger
	timeout time.Duration

	maxIdleConns    int
	idleConnTimeout time.Duration
}

type ProxyOption func(*Proxy)

func NewProxy(targetURL string, tokens integration.TokenSource, logger zerolog.Logger, options ...ProxyOption) (*Proxy, error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		target:          target,
		tokens:          tokens,
		logger:          logger,
		timeout:         30 * time.Second,
		maxIdleConns:    100,
		idleConnTimeout: 90 * time.Second,
	}

	for _, option := range options {
		option(p)
	}

	p.proxy = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ErrorHandler:   p.errorHandler,
		ModifyResponse: p.modifyResponse,
		Transport: &http.Transport{
			MaxIdleConns:          p.maxIdleConns,
			IdleConnTimeout:       p.idleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: p.timeout,
		},
	}

	return p, nil
}

func WithTimeout(timeout time.Duration) ProxyOption {
	return func(p *Proxy) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

func WithIdleConns(n int, timeout time.Duration) ProxyOption {
	return func(p *Proxy) {
		if n > 0 {
			p.maxIdleConns = n
		}
		if timeout > 0 {
			p.idleConnTimeout = timeout
		}
	}
}

// Handler отдаёт /files/{filename} как /api/download/{filename}
func (p *Proxy) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			p.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "only GET is proxied")
			return
		}

		name := path.Base(r.URL.Path)
		if name == "" || name == "." || name == "/" || strings.Contains(name, "..") {
			p.writeError(w, http.StatusBadRequest, "Invalid filename", "filename is required")
			return
		}

		p.proxy.ServeHTTP(w, r)
	})
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	name := path.Base(pr.In.URL.Path)

	pr.SetURL(p.target)
	pr.Out.URL.Path = strings.TrimSuffix(p.target.Path, "/") + downloadPrefix + name
	pr.Out.URL.RawPath = ""
	pr.Out.URL.RawQuery = ""
	pr.SetXForwarded()

	// заголовок клиента не пропускаем, токен берётся только из сессии
	pr.Out.Header.Del("Authorization")
	pr.Out.Header.Del("Cookie")
	if p.tokens != nil {
		if auth, err := p.tokens.Authorization(); err == nil {
			pr.Out.Header.Set("Authorization", auth)
		}
	}

	p.logger.Debug().
		Str("method", pr.In.Method).
		Str("original_path", pr.In.URL.Path).
		Str("target_path", pr.Out.URL.Path).
		Str("target", p.target.String()).
		Msg("Proxying request")
}

func (p *Proxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("target", p.target.String()).
		Msg("Proxy error")

	p.writeError(w, http.StatusBadGateway, "Backend unavailable",
		"The file server is temporarily unavailable. Please try again later.")
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	p.logger.Debug().
		Str("method", resp.Request.Method).
		Str("path", resp.Request.URL.Path).
		Int("status", resp.StatusCode).
		Str("target", p.target.String()).
		Msg("Proxy response")

	resp.Header.Set("X-Service-Name", p.target.Hostname())
	return nil
}

func (p *Proxy) writeError(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     title,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
