package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/radarfiscal/radar/internal/funnel"
	"github.com/radarfiscal/radar/internal/payment"
)

// flexID accepts ids sent either as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type WebhookRequest struct {
	ID     flexID `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID flexID `json:"id"`
	} `json:"data"`
}

type WebhookResponse struct {
	Status string `json:"status"`
}

// handleWebhook receives Mercado Pago notifications. Both the JSON body form
// and the query form (?type=payment&data.id=..., or legacy ?topic=&id=) are
// accepted. When secret is set the x-signature header must match.
func handleWebhook(logger *slog.Logger, svc *funnel.Service, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WebhookRequest
		if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid notification body")
			return
		}

		q := r.URL.Query()
		dataID := firstNonEmpty(string(req.Data.ID), q.Get("data.id"), q.Get("id"))
		kind := firstNonEmpty(req.Type, q.Get("type"), q.Get("topic"))
		if dataID == "" {
			writeError(w, http.StatusBadRequest, "notification without resource id")
			return
		}

		if secret != "" {
			err := payment.VerifySignature(secret, r.Header.Get("x-signature"), r.Header.Get("x-request-id"), dataID)
			if err != nil {
				logger.Warn("webhook signature rejected", "data_id", dataID)
				writeError(w, http.StatusUnauthorized, "invalid signature")
				return
			}
		}

		outcome, err := svc.HandleNotification(r.Context(), payment.Notification{
			EventID:    string(req.ID),
			Type:       kind,
			ResourceID: dataID,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		logger.Info("webhook handled", "data_id", dataID, "type", kind, "outcome", outcome)
		writeJSON(w, http.StatusOK, WebhookResponse{Status: string(outcome)})
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
