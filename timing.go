package oauthgate

import (
	"log/slog"
	"net/http"
	"time"
)

// TimingMiddleware logs request start and completion with the elapsed
// duration at debug level.
func TimingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request started", "method", r.Method, "url", r.URL.String())
			started := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request completed",
				"method", r.Method, "url", r.URL.String(), "duration", time.Since(started))
		})
	}
}
