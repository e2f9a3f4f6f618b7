package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radarfiscal/radar/internal/events"
	"github.com/radarfiscal/radar/internal/funnel"
)

// handleEvents streams payment events for one session. A session that is
// already paid gets a single payment_confirmed event so a late subscriber
// never waits forever.
func handleEvents(logger *slog.Logger, svc *funnel.Service, broker *events.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")

		ch := broker.Subscribe(sessionID)
		defer broker.Unsubscribe(sessionID, ch)

		sess, err := svc.Session(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		if sess.Paid {
			fmt.Fprintf(w, "event: payment_confirmed\ndata: {\"sessionId\":%q}\n\n", sessionID)
			flusher.Flush()
			return
		}

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: payment_confirmed\ndata: %s\n\n", data)
				flusher.Flush()
				return
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
