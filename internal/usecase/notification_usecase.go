package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"text/template"
	"time"

	"safarpay/internal/domain/entities"
	"safarpay/internal/usecase/interfaces"
)

// confirmationTemplate renders the body of the payment confirmation
// message from the payment's own fields.
var confirmationTemplate = template.Must(template.New("payment_confirmation").Parse(
	`Dear {{if .CustomerFirstName}}{{.CustomerFirstName}}{{else}}customer{{end}},

Your payment has been received.

Transaction reference: {{.TxRef}}
Amount: {{.Amount}} {{.Currency}}
{{- if .BookingReference}}
Booking reference: {{.BookingReference}}
{{- end}}

Thank you for booking with us.
`))

// INotificationUseCase sends the confirmation message for a completed
// payment. It runs on the background worker, never inside a request.
type INotificationUseCase interface {
	NotifyCompletion(ctx context.Context, paymentID string) (bool, error)
}

type NotificationUseCase struct {
	payments interfaces.IPaymentRepository
	sender   interfaces.IEmailSender
}

var _ INotificationUseCase = (*NotificationUseCase)(nil)

func NewNotificationUseCase(payments interfaces.IPaymentRepository, sender interfaces.IEmailSender) *NotificationUseCase {
	return &NotificationUseCase{payments: payments, sender: sender}
}

// NotifyCompletion sends the confirmation for one payment. It returns
// false without error when the preconditions are not met: unknown
// payment, non-completed status, no recipient, or already notified.
// Delivery failures propagate so the worker fails the task loudly.
func (u *NotificationUseCase) NotifyCompletion(ctx context.Context, paymentID string) (bool, error) {
	if u.sender == nil {
		return false, errors.New("email sender not configured")
	}

	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		log.Printf("[notification][usecase] payment lookup failed payment_id=%s err=%v", paymentID, err)
		return false, err
	}
	if p.ID == "" {
		log.Printf("[notification][usecase] payment not found payment_id=%s", paymentID)
		return false, nil
	}
	if p.Status != entities.PaymentStatusCompleted {
		log.Printf("[notification][usecase] payment not completed payment_id=%s status=%s", paymentID, p.Status)
		return false, nil
	}
	if p.CustomerEmail == "" {
		log.Printf("[notification][usecase] no recipient email payment_id=%s", paymentID)
		return false, nil
	}

	// Check-and-set before dispatch: duplicate task deliveries become
	// no-ops instead of duplicate emails.
	marked, err := u.payments.MarkNotified(ctx, p.TxRef, time.Now().UTC())
	if err != nil {
		log.Printf("[notification][usecase] mark-notified failed tx_ref=%s err=%v", p.TxRef, err)
		return false, err
	}
	if !marked {
		log.Printf("[notification][usecase] already notified tx_ref=%s", p.TxRef)
		return false, nil
	}

	subject := fmt.Sprintf("Payment confirmation - %s", p.TxRef)
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, p); err != nil {
		return false, err
	}

	if err := u.sender.Send(ctx, p.CustomerEmail, subject, body.String()); err != nil {
		log.Printf("[notification][usecase] delivery failed tx_ref=%s recipient=%s err=%v", p.TxRef, p.CustomerEmail, err)
		return false, err
	}

	log.Printf("[notification][usecase] confirmation sent tx_ref=%s recipient=%s", p.TxRef, p.CustomerEmail)
	return true, nil
}
