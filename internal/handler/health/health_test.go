package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radarfiscal/radar/internal/database"
	"github.com/radarfiscal/radar/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		required   map[string]health.Checker
		optional   map[string]health.Checker
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "all healthy",
			required:   map[string]health.Checker{"sqlite": mockChecker{}},
			optional:   map[string]health.Checker{"redis": mockChecker{}, "rabbitmq": mockChecker{}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"sqlite": "ok", "redis": "ok", "rabbitmq": "ok"},
		},
		{
			name:       "sqlite down",
			required:   map[string]health.Checker{"sqlite": mockChecker{err: errors.New("locked")}},
			optional:   map[string]health.Checker{"redis": mockChecker{}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"sqlite": "error", "redis": "ok"},
		},
		{
			name:       "redis down is degraded",
			required:   map[string]health.Checker{"sqlite": mockChecker{}},
			optional:   map[string]health.Checker{"redis": mockChecker{err: errors.New("refused")}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"sqlite": "ok", "redis": "degraded"},
		},
		{
			name:       "everything down",
			required:   map[string]health.Checker{"sqlite": mockChecker{err: errors.New("db")}},
			optional:   map[string]health.Checker{"rabbitmq": mockChecker{err: errors.New("closed")}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"sqlite": "error", "rabbitmq": "degraded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.required, tt.optional)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]struct{ Status string }
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}

			for name, want := range tt.wantBody {
				if got := body[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestAdapters(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	defer db.Close()
	if err := health.SQL(db).Check(ctx); err != nil {
		t.Errorf("sqlite check: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         "localhost:1",
		DialTimeout:  10 * time.Millisecond,
		ReadTimeout:  10 * time.Millisecond,
		WriteTimeout: 10 * time.Millisecond,
		MaxRetries:   -1,
	})
	defer rdb.Close()
	if err := health.Redis(rdb).Check(ctx); err == nil {
		t.Error("redis check against closed port succeeded")
	}
}
