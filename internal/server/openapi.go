package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/funnel"
	"github.com/radarfiscal/radar/internal/payment"
	"github.com/radarfiscal/radar/internal/scoring"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthStatus struct {
	Status string `json:"status" enum:"ok,error,degraded"`
}

// ResultResponse documents funnel.ResultView. Score and factors are only
// present once the session is paid.
type ResultResponse struct {
	Classification string           `json:"classification" enum:"LOW,MEDIUM,HIGH"`
	PaymentStatus  string           `json:"paymentStatus" enum:"pending,paid"`
	ScoreFinal     *int             `json:"scoreFinal,omitempty" minimum:"0" maximum:"100"`
	Factors        []scoring.Factor `json:"factors,omitempty"`
}

type sessionPath struct {
	ID string `path:"id"`
}

type answerInput struct {
	ID         string `path:"id"`
	QuestionID string `json:"questionId" required:"true"`
	Label      string `json:"label" required:"true"`
	Weight     int    `json:"weight"`
}

type checkoutInput struct {
	ID    string `path:"id"`
	Email string `json:"email" required:"true" format:"email"`
}

type webhookInput struct {
	Type      string `query:"type"`
	DataID    string `query:"data.id"`
	Signature string `header:"x-signature"`
	RequestID string `header:"x-request-id"`
	WebhookRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Radar Fiscal API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Tax risk self-assessment funnel: questionnaire, scoring and PIX paywall.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health of backend dependencies. Optional ones report degraded without failing.")
	getHealthz.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]HealthStatus{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/questionnaire
	getQuestionnaire, _ := r.NewOperationContext(http.MethodGet, "/api/questionnaire")
	getQuestionnaire.SetSummary("Questionnaire")
	getQuestionnaire.SetDescription("Returns the question catalog including visibility rules.")
	getQuestionnaire.AddRespStructure([]catalog.Question{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getQuestionnaire)

	// GET /api/scoring-rules
	getRules, _ := r.NewOperationContext(http.MethodGet, "/api/scoring-rules")
	getRules.SetSummary("Scoring rules")
	getRules.SetDescription("Returns the classification thresholds and factor impact levels.")
	getRules.AddRespStructure(catalog.Rules{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getRules)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Create session")
	postSession.SetDescription("Starts an anonymous assessment session.")
	postSession.AddRespStructure(CreateSessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postSession)

	// POST /api/sessions/{id}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{id}/answer")
	postAnswer.SetSummary("Record answer")
	postAnswer.SetDescription("Stores or replaces the answer to one question with the label and weight sent.")
	postAnswer.AddReqStructure(answerInput{})
	postAnswer.AddRespStructure(SuccessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAnswer)

	// GET /api/sessions/{id}/result
	getResult, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/result")
	getResult.SetSummary("Get result")
	getResult.SetDescription("Classification is always returned; score and factors only after payment.")
	getResult.AddReqStructure(sessionPath{})
	getResult.AddRespStructure(ResultResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResult.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResult)

	// POST /api/sessions/{id}/checkout
	postCheckout, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{id}/checkout")
	postCheckout.SetSummary("Checkout")
	postCheckout.SetDescription("Creates a PIX charge for the full report and returns the code to pay.")
	postCheckout.AddReqStructure(checkoutInput{})
	postCheckout.AddRespStructure(payment.Code{}, openapi.WithHTTPStatus(http.StatusOK))
	postCheckout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCheckout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postCheckout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postCheckout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postCheckout)

	// GET /api/sessions/{id}/payment-status
	getStatus, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/payment-status")
	getStatus.SetSummary("Payment status")
	getStatus.SetDescription("Polled by the paywall until the session is paid.")
	getStatus.AddReqStructure(sessionPath{})
	getStatus.AddRespStructure(funnel.PaymentStatus{}, openapi.WithHTTPStatus(http.StatusOK))
	getStatus.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStatus)

	// GET /api/sessions/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/events")
	getEvents.SetSummary("SSE payment stream")
	getEvents.SetDescription("Server-Sent Events stream that emits payment_confirmed once and closes.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{id}/report.pdf
	getReport, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/report.pdf")
	getReport.SetSummary("Report download")
	getReport.SetDescription("Not available yet. Unpaid sessions get 402.")
	getReport.AddReqStructure(sessionPath{})
	getReport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusPaymentRequired))
	getReport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotImplemented))
	_ = r.AddOperation(getReport)

	// POST /api/webhooks/mercadopago
	postWebhook, _ := r.NewOperationContext(http.MethodPost, "/api/webhooks/mercadopago")
	postWebhook.SetSummary("Mercado Pago webhook")
	postWebhook.SetDescription("Payment notification. The payment is re-read from the provider before the session is confirmed.")
	postWebhook.AddReqStructure(webhookInput{})
	postWebhook.AddRespStructure(WebhookResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postWebhook.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postWebhook.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postWebhook.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postWebhook)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
