package interfaces

import "context"

// NotificationTask asks the background worker to send the confirmation
// message for one payment.
type NotificationTask struct {
	PaymentID string `json:"payment_id"`
}

// INotificationQueue decouples notification dispatch from the
// request/response cycle. Enqueue must not block; the verifier treats a
// failed enqueue as log-and-continue.
type INotificationQueue interface {
	Enqueue(ctx context.Context, task NotificationTask) error
}
