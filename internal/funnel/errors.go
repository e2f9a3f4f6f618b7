package funnel

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyPaid     = errors.New("session already paid")
	// ErrPaymentRequired guards content only a paid session may see.
	ErrPaymentRequired = errors.New("payment required")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// GatewayError wraps a payment provider failure. Msg is safe to show to the
// customer.
type GatewayError struct {
	Msg string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }
