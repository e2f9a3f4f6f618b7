// Package client drives the assessment funnel from the customer side:
// consent, questions, teaser, PIX checkout, payment polling and the full
// report. It talks to the HTTP API only.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/funnel"
	"github.com/radarfiscal/radar/internal/payment"
	"github.com/radarfiscal/radar/internal/scoring"
)

// Result mirrors the result endpoint. ScoreFinal and Factors are nil until
// the session is paid.
type Result struct {
	Classification scoring.Classification `json:"classification"`
	PaymentStatus  string                 `json:"paymentStatus"`
	ScoreFinal     *int                   `json:"scoreFinal,omitempty"`
	Factors        []scoring.Factor       `json:"factors,omitempty"`
}

func (r Result) Paid() bool { return r.ScoreFinal != nil }

// APIError is a non-2xx answer carrying the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *API) Questionnaire(ctx context.Context) ([]catalog.Question, error) {
	var qs []catalog.Question
	if err := a.do(ctx, http.MethodGet, "/api/questionnaire", nil, &qs); err != nil {
		return nil, fmt.Errorf("loading questionnaire: %w", err)
	}
	return qs, nil
}

func (a *API) CreateSession(ctx context.Context) (string, error) {
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/sessions", nil, &resp); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return resp.SessionID, nil
}

func (a *API) Answer(ctx context.Context, sessionID, questionID string, opt catalog.Option) error {
	body := map[string]any{"questionId": questionID, "label": opt.Label, "weight": opt.Weight}
	if err := a.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/answer", body, nil); err != nil {
		return fmt.Errorf("saving answer %s: %w", questionID, err)
	}
	return nil
}

func (a *API) Result(ctx context.Context, sessionID string) (Result, error) {
	var r Result
	if err := a.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/result", nil, &r); err != nil {
		return Result{}, fmt.Errorf("loading result: %w", err)
	}
	return r, nil
}

func (a *API) Checkout(ctx context.Context, sessionID, email string) (payment.Code, error) {
	var code payment.Code
	body := map[string]string{"email": email}
	if err := a.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/checkout", body, &code); err != nil {
		return payment.Code{}, fmt.Errorf("checkout: %w", err)
	}
	return code, nil
}

func (a *API) PaymentStatus(ctx context.Context, sessionID string) (funnel.PaymentStatus, error) {
	var st funnel.PaymentStatus
	if err := a.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/payment-status", nil, &st); err != nil {
		return funnel.PaymentStatus{}, fmt.Errorf("payment status: %w", err)
	}
	return st, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
