package request

import "strings"

// InitializePaymentRequest is the payload for POST /payments/initialize.
//
// Amount is a pointer so "absent" stays distinguishable from zero: when
// absent the amount is resolved from the booking's price. All other
// fields are optional; see the field docs on the usecase params.
type InitializePaymentRequest struct {
	Amount           *float64 `json:"amount"`
	Currency         string   `json:"currency"`
	BookingID        string   `json:"booking_id"`
	BookingReference string   `json:"booking_reference"`
	CustomerEmail    string   `json:"customer_email"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	TxRef            string   `json:"tx_ref"`
	ReturnURL        string   `json:"return_url"`
	CallbackURL      string   `json:"callback_url"`
}

// Normalized returns a copy with surrounding whitespace stripped from
// every string field.
func (r InitializePaymentRequest) Normalized() InitializePaymentRequest {
	r.Currency = strings.TrimSpace(r.Currency)
	r.BookingID = strings.TrimSpace(r.BookingID)
	r.BookingReference = strings.TrimSpace(r.BookingReference)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.TxRef = strings.TrimSpace(r.TxRef)
	r.ReturnURL = strings.TrimSpace(r.ReturnURL)
	r.CallbackURL = strings.TrimSpace(r.CallbackURL)
	return r
}
