package interfaces

import (
	"context"

	"safarpay/internal/domain/entities"
)

// IBookingRepository is the read-only view of bookings this service
// needs to resolve a payment amount and the payer identity. Booking
// CRUD lives in the listings service.
type IBookingRepository interface {
	GetByID(ctx context.Context, id string) (entities.Booking, error)
}
