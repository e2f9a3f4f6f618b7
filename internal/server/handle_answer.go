package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/radarfiscal/radar/internal/funnel"
)

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
	Weight     int    `json:"weight"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func handleCreateSession(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.CreateSession(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, CreateSessionResponse{SessionID: sess.ID})
	}
}

func handleAnswer(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := svc.RecordAnswer(r.Context(), chi.URLParam(r, "id"),
			strings.TrimSpace(req.QuestionID), req.Label, req.Weight)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	}
}

func handleResult(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Result(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// handleReport gates the downloadable report behind payment. Rendering is
// not available yet, so paid sessions get 501.
func handleReport(logger *slog.Logger, svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RequirePaid(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeError(w, http.StatusNotImplemented, "coming soon")
	}
}

func handleQuestionnaire(svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Catalog().Questions())
	}
}

func handleScoringRules(svc *funnel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Rules())
	}
}
