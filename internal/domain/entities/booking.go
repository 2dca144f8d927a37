package entities

import "time"

// Booking is the read-only snapshot of a booking used to resolve the
// payment amount and the payer identity. Booking CRUD itself belongs to
// the listings service; this service only ever reads.
//
// Storage model (DynamoDB):
//   - PK: id

type Booking struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Price     float64   `json:"price"`

	CustomerEmail     string `json:"customer_email,omitempty"`
	CustomerFirstName string `json:"customer_first_name,omitempty"`
	CustomerLastName  string `json:"customer_last_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
