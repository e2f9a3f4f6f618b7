package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/radarfiscal/radar/internal/funnel"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps funnel errors to responses. Anything unrecognised
// is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *funnel.ValidationError
	var gerr *funnel.GatewayError

	switch {
	case errors.Is(err, funnel.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, funnel.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "session already paid")
	case errors.Is(err, funnel.ErrPaymentRequired):
		writeError(w, http.StatusPaymentRequired, "payment required")
	case errors.As(err, &gerr):
		logger.Error("payment provider error", "error", err)
		writeError(w, http.StatusBadGateway, gerr.Msg)
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
