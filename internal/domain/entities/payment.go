package entities

import "time"

// PaymentStatus represents the lifecycle of a payment attempt.
//
// A payment is created Pending and moves exactly once to Completed or
// Failed. Both are terminal: verification may run again but never
// overwrites a terminal status.

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// completedGatewayStatuses is the exact (case-sensitive) set of raw
// provider statuses observed to mean a successful charge. Anything else
// resolves to Failed.
var completedGatewayStatuses = map[string]struct{}{
	"success":   {},
	"completed": {},
	"Success":   {},
}

// MapGatewayStatus translates the provider's raw status string into the
// internal terminal status.
func MapGatewayStatus(raw string) PaymentStatus {
	if _, ok := completedGatewayStatuses[raw]; ok {
		return PaymentStatusCompleted
	}
	return PaymentStatusFailed
}

// Payment is the ledger record for one transaction attempt.
//
// Storage model (DynamoDB):
//   - PK: tx_ref (the external correlation key; the conditional put on
//     creation enforces its uniqueness)
//   - GSI1 (id-index): id
//
// Amount keeps the original value as requested, including any fractional
// part; the gateway only ever sees the truncated integer amount.
// NotifiedAt marks that the confirmation message was dispatched; it is
// set at most once via a conditional update.

type Payment struct {
	ID               string        `json:"id"`
	TxRef            string        `json:"tx_ref"`
	BookingID        string        `json:"booking_id,omitempty"`
	BookingReference string        `json:"booking_reference,omitempty"`
	Amount           float64       `json:"amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	GatewayRef       string        `json:"gateway_ref,omitempty"`
	CheckoutURL      string        `json:"checkout_url,omitempty"`

	CustomerEmail     string `json:"customer_email,omitempty"`
	CustomerFirstName string `json:"customer_first_name,omitempty"`
	CustomerLastName  string `json:"customer_last_name,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}
