package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// NewCORS пускает фронтенд к локальному серверу. Пустые списки заменяются
// значениями по умолчанию; id запроса всегда виден клиенту.
func NewCORS(opts CORSOptions) func(http.Handler) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Accept", "Content-Type"}
	}

	exposed := append([]string(nil), opts.ExposedHeaders...)
	if !containsHeader(exposed, middleware.RequestIDHeader) {
		exposed = append(exposed, middleware.RequestIDHeader)
	}

	// браузер не примет креды вместе с Access-Control-Allow-Origin: *
	credentials := opts.AllowCredentials && !containsHeader(opts.AllowedOrigins, "*")

	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   opts.AllowedMethods,
		AllowedHeaders:   opts.AllowedHeaders,
		ExposedHeaders:   exposed,
		AllowCredentials: credentials,
		MaxAge:           opts.MaxAge,
	})
}

func containsHeader(list []string, v string) bool {
	for _, s := range list {
		if http.CanonicalHeaderKey(s) == http.CanonicalHeaderKey(v) {
			return true
		}
	}
	return false
}
