package funnel

import (
	"context"
	"time"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/payment"
)

type Store interface {
	CreateSession(ctx context.Context, id string, createdAt time.Time) error
	SessionByID(ctx context.Context, id string) (Session, error)
	// SessionByProviderRef resolves a provider payment id back to its session.
	SessionByProviderRef(ctx context.Context, ref string) (Session, error)

	UpsertAnswer(ctx context.Context, sessionID, questionID string, a catalog.Answer, at time.Time) error
	Answers(ctx context.Context, sessionID string) (catalog.Answers, error)

	SaveCheckout(ctx context.Context, sessionID, email string, co payment.Checkout) error
	// MarkPaid flips an unpaid session to paid and reports whether this call
	// made the transition.
	MarkPaid(ctx context.Context, sessionID, providerRef, providerStatus string, at time.Time) (bool, error)
	SetProviderStatus(ctx context.Context, sessionID, providerStatus string) error
}
