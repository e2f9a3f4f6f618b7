package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	svc := deps.Funnel

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Radar Fiscal API", "/openapi.json", "/docs"))
	if deps.Health != nil {
		r.Mount("/healthz", deps.Health)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/questionnaire", handleQuestionnaire(svc))
		r.Get("/scoring-rules", handleScoringRules(svc))

		r.Post("/sessions", handleCreateSession(logger, svc))
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/answer", handleAnswer(logger, svc))
			r.Get("/result", handleResult(logger, svc))
			r.Post("/checkout", handleCheckout(logger, svc))
			r.Get("/payment-status", handlePaymentStatus(logger, svc))
			r.Get("/events", handleEvents(logger, svc, deps.Broker))
			r.Get("/report.pdf", handleReport(logger, svc))
		})

		r.Post("/webhooks/mercadopago", handleWebhook(logger, svc, deps.WebhookSecret))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
