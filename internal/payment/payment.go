// Package payment adapts payment providers to the two calls the funnel
// needs: create a PIX charge for a session and verify a provider callback.
package payment

import (
	"context"
	"errors"
	"time"
)

// Provider status strings shared by every gateway.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

var (
	// ErrRejected means the provider refused the charge.
	ErrRejected = errors.New("charge rejected by provider")
	// ErrUnknownPayment means a callback referenced a payment the provider
	// does not know about.
	ErrUnknownPayment = errors.New("unknown payment")
)

// Charge is a request for a single payment tied to a session.
type Charge struct {
	AmountCents int64
	Currency    string
	Reference   string
	Email       string
	Description string
}

// Code is the scannable payload the customer pays with.
type Code struct {
	QRCode       string     `json:"qr_code"`
	QRCodeBase64 string     `json:"qr_code_base64"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Checkout is the provider's answer to a Charge.
type Checkout struct {
	ProviderRef string
	Status      string
	Code        Code
}

// Notification is a provider callback as received over HTTP.
type Notification struct {
	EventID    string
	Type       string
	ResourceID string
}

// Confirmation is the provider's authoritative view of a payment.
type Confirmation struct {
	Reference      string
	ProviderRef    string
	ProviderStatus string
	Paid           bool
}

type Gateway interface {
	CreateCharge(ctx context.Context, c Charge) (Checkout, error)
	Verify(ctx context.Context, n Notification) (Confirmation, error)
}
