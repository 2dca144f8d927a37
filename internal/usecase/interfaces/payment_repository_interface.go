package interfaces

import (
	"context"
	"errors"
	"time"

	"safarpay/internal/domain/entities"
)

// ErrTxRefExists is returned by Create when a payment with the same
// tx_ref was already persisted.
var ErrTxRefExists = errors.New("tx_ref already exists")

// IPaymentRepository abstracts DynamoDB persistence for the payment
// ledger.
//
// Lookups return a zero-value Payment (empty TxRef) when nothing is
// found; callers translate that into their own not-found error.
type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByTxRef(ctx context.Context, txRef string) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)

	// FinalizeStatus applies a terminal status to the payment only while
	// it is still pending, refreshing gateway_ref when one is given. The
	// bool reports whether the transition actually happened; when the
	// payment was already terminal the stored record is returned
	// unchanged (apart from a gateway_ref refresh).
	FinalizeStatus(ctx context.Context, txRef string, status entities.PaymentStatus, gatewayRef string) (entities.Payment, bool, error)

	// MarkNotified sets notified_at exactly once. It returns false when
	// the marker was already set.
	MarkNotified(ctx context.Context, txRef string, at time.Time) (bool, error)
}
