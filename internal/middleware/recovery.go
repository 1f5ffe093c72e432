package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Recovery превращает панику обработчика в JSON 500. http.ErrAbortHandler
// пробрасывается дальше: так net/http обрывает соединение.
func Recovery(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log.Error().
					Interface("panic", rvr).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered")

				utils.ErrorResponse(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
