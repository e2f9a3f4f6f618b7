package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radarfiscal/radar/internal/funnel"
)

type CheckoutRequest struct {
	Email string `json:"email"`
}

func handleCheckout(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckoutRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		code, err := svc.Checkout(r.Context(), chi.URLParam(r, "id"), req.Email)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, code)
	}
}

func handlePaymentStatus(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.PaymentStatus(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
