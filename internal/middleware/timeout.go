package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает контекст запроса; обработчик сам отвечает 504 по context.DeadlineExceeded.
// Ответ не буферизуется, поэтому проксирование файлов идёт потоком.
func Timeout(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
