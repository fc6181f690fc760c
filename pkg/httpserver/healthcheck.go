package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/moneyflow/moneyflow/pkg/logger"
)

// HealthCheckHandler serves liveness and readiness probes. Without checks it
// always answers 200 "ok". With checks it runs each one against the request
// context and answers 500 "unavailable" on the first failure.
func HealthCheckHandler(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				http.Error(w, "unavailable", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
