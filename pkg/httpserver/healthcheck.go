package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/snaketips/pkg/logger"
)

// HealthCheckHandler returns a handler for liveness and readiness probes.
//
// Without checks it always answers 200 "Healthy". Otherwise every check
// runs against the request context; the first failure answers 503
// "Unhealthy" and is logged.
func HealthCheckHandler(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "health check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("Unhealthy"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Healthy"))
	}
}
