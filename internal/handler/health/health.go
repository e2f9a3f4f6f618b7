package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

func SQL(db *sql.DB) Checker {
	return CheckFunc(db.PingContext)
}

func Redis(client *redis.Client) Checker {
	return CheckFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// Handler reports dependency health. A failing required check turns the
// response into 503; a failing optional check is reported as "degraded"
// with 200, since the funnel keeps working without it.
type Handler struct {
	required map[string]Checker
	optional map[string]Checker
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger, required, optional map[string]Checker) *Handler {
	return &Handler{required: required, optional: optional, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]result, len(h.required)+len(h.optional))
	status := http.StatusOK

	for name, c := range h.required {
		if err := c.Check(ctx); err != nil {
			h.logger.Error("health check failed", "name", name, "error", err)
			results[name] = result{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = result{Status: "ok"}
	}
	for name, c := range h.optional {
		if err := c.Check(ctx); err != nil {
			h.logger.Warn("optional dependency unhealthy", "name", name, "error", err)
			results[name] = result{Status: "degraded"}
			continue
		}
		results[name] = result{Status: "ok"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
