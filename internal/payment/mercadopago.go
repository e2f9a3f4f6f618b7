package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	pixMethod      = "pix"
	pixLifetime    = 30 * time.Minute
	mpTimeFormat   = "2006-01-02T15:04:05.000-07:00"
	maxErrorDetail = 512
)

// MercadoPagoConfig configures the PIX gateway.
type MercadoPagoConfig struct {
	AccessToken string
	BaseURL     string
	// NotificationURL receives payment webhooks. Empty leaves it unset and
	// relies on the account-level webhook configuration.
	NotificationURL string
	Timeout         time.Duration
}

// MercadoPago creates PIX payments through the Mercado Pago payments API.
type MercadoPago struct {
	cfg        MercadoPagoConfig
	httpClient *http.Client
	now        func() time.Time
	idemKey    func() string
}

func NewMercadoPago(cfg MercadoPagoConfig) *MercadoPago {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &MercadoPago{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		idemKey:    uuid.NewString,
	}
}

type mpPayer struct {
	Email string `json:"email"`
}

type mpPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             mpPayer `json:"payer"`
	ExternalReference string  `json:"external_reference"`
	NotificationURL   string  `json:"notification_url,omitempty"`
	DateOfExpiration  string  `json:"date_of_expiration"`
}

type mpPayment struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	ExternalReference  string `json:"external_reference"`
	DateOfExpiration   string `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (m *MercadoPago) CreateCharge(ctx context.Context, c Charge) (Checkout, error) {
	body := mpPaymentRequest{
		TransactionAmount: float64(c.AmountCents) / 100,
		Description:       c.Description,
		PaymentMethodID:   pixMethod,
		Payer:             mpPayer{Email: c.Email},
		ExternalReference: c.Reference,
		NotificationURL:   m.cfg.NotificationURL,
		DateOfExpiration:  m.now().Add(pixLifetime).Format(mpTimeFormat),
	}

	var p mpPayment
	if err := m.do(ctx, http.MethodPost, "/v1/payments", body, &p); err != nil {
		return Checkout{}, fmt.Errorf("creating pix payment: %w", err)
	}
	if p.PointOfInteraction.TransactionData.QRCode == "" {
		return Checkout{}, fmt.Errorf("payment %d has no pix code: %w", p.ID, ErrRejected)
	}

	code := Code{
		QRCode:       p.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: p.PointOfInteraction.TransactionData.QRCodeBase64,
	}
	if t, err := time.Parse(mpTimeFormat, p.DateOfExpiration); err == nil {
		code.ExpiresAt = &t
	}

	return Checkout{
		ProviderRef: strconv.FormatInt(p.ID, 10),
		Status:      p.Status,
		Code:        code,
	}, nil
}

// Verify fetches the payment named by the notification. Only "payment"
// notifications are meaningful; others report ErrUnknownPayment.
func (m *MercadoPago) Verify(ctx context.Context, n Notification) (Confirmation, error) {
	if n.Type != "" && n.Type != "payment" {
		return Confirmation{}, fmt.Errorf("notification type %q: %w", n.Type, ErrUnknownPayment)
	}
	if n.ResourceID == "" {
		return Confirmation{}, fmt.Errorf("notification without payment id: %w", ErrUnknownPayment)
	}

	var p mpPayment
	if err := m.do(ctx, http.MethodGet, "/v1/payments/"+n.ResourceID, nil, &p); err != nil {
		return Confirmation{}, fmt.Errorf("fetching payment %s: %w", n.ResourceID, err)
	}

	return Confirmation{
		Reference:      p.ExternalReference,
		ProviderRef:    strconv.FormatInt(p.ID, 10),
		ProviderStatus: p.Status,
		Paid:           p.Status == StatusApproved,
	}, nil
}

// providerError is a non-2xx answer from the API.
type providerError struct {
	Status int
	Body   string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("mercado pago returned %d: %s", e.Status, e.Body)
}

func (m *MercadoPago) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", m.idemKey())
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownPayment
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		perr := &providerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %w", ErrRejected, perr)
		}
		return perr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
