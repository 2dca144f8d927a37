package response

import (
	"encoding/json"
	"time"

	"safarpay/internal/domain/entities"
)

type PaymentResponse struct {
	ID               string  `json:"id"`
	TxRef            string  `json:"tx_ref"`
	BookingID        string  `json:"booking_id,omitempty"`
	BookingReference string  `json:"booking_reference,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	GatewayRef       string  `json:"gateway_ref,omitempty"`
	CheckoutURL      string  `json:"checkout_url,omitempty"`

	CustomerEmail     string `json:"customer_email,omitempty"`
	CustomerFirstName string `json:"customer_first_name,omitempty"`
	CustomerLastName  string `json:"customer_last_name,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		TxRef:             p.TxRef,
		BookingID:         p.BookingID,
		BookingReference:  p.BookingReference,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		GatewayRef:        p.GatewayRef,
		CheckoutURL:       p.CheckoutURL,
		CustomerEmail:     p.CustomerEmail,
		CustomerFirstName: p.CustomerFirstName,
		CustomerLastName:  p.CustomerLastName,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		NotifiedAt:        p.NotifiedAt,
	}
}

// InitializePaymentResponse is the 201 body of payments/initialize.
type InitializePaymentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	CheckoutURL string          `json:"checkout_url"`
}

// VerifyPaymentResponse echoes the provider's raw view next to the
// resulting ledger status.
type VerifyPaymentResponse struct {
	TxRef         string          `json:"tx_ref"`
	ChapaStatus   string          `json:"chapa_status"`
	PaymentStatus string          `json:"payment_status"`
	Raw           json.RawMessage `json:"raw"`
}
