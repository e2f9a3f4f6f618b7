package payment

import (
	"context"
	"fmt"
	"strings"
)

// Placeholder values returned when no provider is configured.
const (
	MockQRCode       = "00020101021226830014br.gov.bcb.pix..."
	MockQRCodeBase64 = "iVBORw0KGgoAAAANSUhEUgAAA..."
	mockRefPrefix    = "mock-"
)

// Mock is the gateway used without provider credentials. Charges always
// succeed with a fixed placeholder code. A notification whose resource id is
// the provider ref of a mock charge is verified as approved, which lets a
// developer simulate payment by posting to the webhook endpoint.
type Mock struct{}

func (Mock) CreateCharge(_ context.Context, c Charge) (Checkout, error) {
	return Checkout{
		ProviderRef: mockRefPrefix + c.Reference,
		Status:      StatusPending,
		Code: Code{
			QRCode:       MockQRCode,
			QRCodeBase64: MockQRCodeBase64,
		},
	}, nil
}

func (Mock) Verify(_ context.Context, n Notification) (Confirmation, error) {
	ref, ok := strings.CutPrefix(n.ResourceID, mockRefPrefix)
	if !ok || ref == "" {
		return Confirmation{}, fmt.Errorf("mock payment %q: %w", n.ResourceID, ErrUnknownPayment)
	}
	return Confirmation{
		Reference:      ref,
		ProviderRef:    n.ResourceID,
		ProviderStatus: StatusApproved,
		Paid:           true,
	}, nil
}
