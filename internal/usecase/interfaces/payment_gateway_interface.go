package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable covers transport failures, timeouts and
	// non-2xx provider responses.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected covers 2xx provider responses whose envelope
	// reports a non-success status.
	ErrGatewayRejected = errors.New("payment gateway rejected transaction")
)

// GatewayError wraps one of the sentinel errors above together with the
// provider's HTTP status and raw body for diagnostics.
type GatewayError struct {
	Err        error
	StatusCode int
	Body       json.RawMessage
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%v (http_status=%d body=%s)", e.Err, e.StatusCode, string(e.Body))
}

func (e *GatewayError) Unwrap() error { return e.Err }

// GatewayInitializeRequest is the payload for the provider's
// transaction initialize call. Amount is whole units only; the provider
// does not accept fractional amounts.
type GatewayInitializeRequest struct {
	Amount      int64
	Currency    string
	FirstName   string
	LastName    string
	Email       string
	TxRef       string
	CallbackURL string
	ReturnURL   string
}

// GatewayInitializeResult carries the checkout redirect target and the
// provider-assigned reference.
type GatewayInitializeResult struct {
	CheckoutURL string
	GatewayRef  string
	Raw         json.RawMessage
}

// GatewayVerifyResult carries the provider's authoritative view of a
// transaction. Status is the raw provider string; mapping it to an
// internal status is the verifier's job.
type GatewayVerifyResult struct {
	Status     string
	GatewayRef string
	Amount     float64
	Raw        json.RawMessage
}

// IPaymentGateway abstracts the external payment provider (Chapa).
//
// Both calls are single synchronous attempts with a bounded timeout; no
// retries, no caching.
type IPaymentGateway interface {
	InitializePayment(ctx context.Context, req GatewayInitializeRequest) (GatewayInitializeResult, error)
	VerifyPayment(ctx context.Context, txRef string) (GatewayVerifyResult, error)
}
