// Package funnel owns the session lifecycle: answers, checkout, payment
// confirmation and the paywalled result.
package funnel

import (
	"time"

	"github.com/radarfiscal/radar/internal/payment"
)

type State string

const (
	StateCreated           State = "CREATED"
	StateAnswering         State = "ANSWERING"
	StateCheckoutInitiated State = "CHECKOUT_INITIATED"
	StatePaid              State = "PAID"
)

type Session struct {
	ID             string
	CreatedAt      time.Time
	Paid           bool
	Email          string
	ProviderRef    string
	ProviderStatus string
	PaidAt         *time.Time
	PaymentCode    *payment.Code
	Answered       int
}

// State derives the lifecycle position from the stored row. Paid is terminal.
func (s Session) State() State {
	switch {
	case s.Paid:
		return StatePaid
	case s.ProviderRef != "":
		return StateCheckoutInitiated
	case s.Answered > 0:
		return StateAnswering
	default:
		return StateCreated
	}
}

// PaymentStatus is the polling view of a session.
type PaymentStatus struct {
	Paid   bool   `json:"paid"`
	Status string `json:"status"`
}

// paymentStatus reports the paid flag and the last status the provider gave
// for the charge. Status is empty before checkout.
func (s Session) paymentStatus() PaymentStatus {
	return PaymentStatus{Paid: s.Paid, Status: s.ProviderStatus}
}

// resultStatus is the coarse paid/pending label shown next to a result.
func (s Session) resultStatus() string {
	if s.Paid {
		return "paid"
	}
	return "pending"
}
