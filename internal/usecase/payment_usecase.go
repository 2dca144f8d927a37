package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"safarpay/internal/domain/entities"
	"safarpay/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrAmountRequired  = errors.New("amount is required")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

const defaultCurrency = "ETB"

// InitiateParams is everything a caller may pass to start a payment.
// Amount is a pointer so "absent" and "zero" stay distinguishable; an
// explicit amount always wins over the booking's price.
type InitiateParams struct {
	Amount           *float64
	Currency         string
	BookingID        string
	BookingReference string
	CustomerEmail    string
	FirstName        string
	LastName         string
	TxRef            string
	ReturnURL        string
	CallbackURL      string
}

// InitiateResult pairs the created ledger record with the provider's
// checkout redirect target.
type InitiateResult struct {
	Payment     entities.Payment
	CheckoutURL string
}

// VerifyOutcome is what the verify and callback endpoints return:
// the raw provider status, the resulting ledger status and the full
// provider response for diagnostics.
type VerifyOutcome struct {
	TxRef         string
	ChapaStatus   string
	PaymentStatus entities.PaymentStatus
	Raw           json.RawMessage
	Payment       entities.Payment
}

// IPaymentUseCase owns the payment lifecycle: initiation against the
// gateway and authoritative verification of the outcome.
type IPaymentUseCase interface {
	InitiatePayment(ctx context.Context, params InitiateParams) (InitiateResult, error)
	VerifyPayment(ctx context.Context, txRef string) (VerifyOutcome, error)
	GetByTxRef(ctx context.Context, txRef string) (entities.Payment, error)
}

type PaymentUseCase struct {
	payments interfaces.IPaymentRepository
	bookings interfaces.IBookingRepository
	gateway  interfaces.IPaymentGateway
	queue    interfaces.INotificationQueue

	// publicBaseURL is the externally reachable root of this service,
	// used to derive default return/callback URLs.
	publicBaseURL string
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(payments interfaces.IPaymentRepository, bookings interfaces.IBookingRepository, gateway interfaces.IPaymentGateway, queue interfaces.INotificationQueue, publicBaseURL string) *PaymentUseCase {
	return &PaymentUseCase{
		payments:      payments,
		bookings:      bookings,
		gateway:       gateway,
		queue:         queue,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (u *PaymentUseCase) InitiatePayment(ctx context.Context, params InitiateParams) (InitiateResult, error) {
	log.Printf("[payment][usecase] initiate start booking_id=%q tx_ref=%q", params.BookingID, params.TxRef)
	if u.gateway == nil {
		log.Printf("[payment][usecase] gateway not configured")
		return InitiateResult{}, errors.New("payment gateway not configured")
	}

	var booking entities.Booking
	if params.BookingID != "" {
		if u.bookings == nil {
			log.Printf("[payment][usecase] booking repository not configured booking_id=%s", params.BookingID)
			return InitiateResult{}, errors.New("booking repository not configured")
		}
		b, err := u.bookings.GetByID(ctx, params.BookingID)
		if err != nil {
			log.Printf("[payment][usecase] failed loading booking booking_id=%s err=%v", params.BookingID, err)
			return InitiateResult{}, err
		}
		if b.ID == "" {
			log.Printf("[payment][usecase] booking not found booking_id=%s", params.BookingID)
			return InitiateResult{}, ErrBookingNotFound
		}
		booking = b
	}

	// Explicit amount wins; otherwise the booking's price is the source
	// of truth.
	amount := params.Amount
	if amount == nil && booking.ID != "" {
		price := booking.Price
		amount = &price
	}
	if amount == nil {
		log.Printf("[payment][usecase] no resolvable amount booking_id=%q", params.BookingID)
		return InitiateResult{}, ErrAmountRequired
	}

	currency := params.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	email := params.CustomerEmail
	if email == "" {
		email = booking.CustomerEmail
	}
	firstName := params.FirstName
	if firstName == "" {
		firstName = booking.CustomerFirstName
	}
	lastName := params.LastName
	if lastName == "" {
		lastName = booking.CustomerLastName
	}

	txRef := params.TxRef
	if txRef == "" {
		txRef = newTxRef()
	}

	callbackURL := params.CallbackURL
	if callbackURL == "" {
		callbackURL = u.publicBaseURL + "/v1/payments/callback"
	}
	returnURL := params.ReturnURL
	if returnURL == "" {
		returnURL = callbackURL
	}

	// The gateway only accepts whole-unit amounts; the ledger keeps the
	// original value.
	initResult, err := u.gateway.InitializePayment(ctx, interfaces.GatewayInitializeRequest{
		Amount:      int64(*amount),
		Currency:    currency,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		TxRef:       txRef,
		CallbackURL: callbackURL,
		ReturnURL:   returnURL,
	})
	if err != nil {
		log.Printf("[payment][usecase] gateway initialize failed tx_ref=%s err=%v", txRef, err)
		return InitiateResult{}, err
	}

	now := time.Now().UTC()
	p := entities.Payment{
		ID:                uuid.NewString(),
		TxRef:             txRef,
		BookingID:         params.BookingID,
		BookingReference:  params.BookingReference,
		Amount:            *amount,
		Currency:          currency,
		Status:            entities.PaymentStatusPending,
		GatewayRef:        initResult.GatewayRef,
		CheckoutURL:       initResult.CheckoutURL,
		CustomerEmail:     email,
		CustomerFirstName: firstName,
		CustomerLastName:  lastName,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := u.payments.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] payment create failed tx_ref=%s err=%v", txRef, err)
		return InitiateResult{}, err
	}

	log.Printf("[payment][usecase] initiate success tx_ref=%s payment_id=%s", created.TxRef, created.ID)
	return InitiateResult{Payment: created, CheckoutURL: initResult.CheckoutURL}, nil
}

func (u *PaymentUseCase) VerifyPayment(ctx context.Context, txRef string) (VerifyOutcome, error) {
	log.Printf("[payment][usecase] verify start tx_ref=%s", txRef)
	if u.gateway == nil {
		log.Printf("[payment][usecase] gateway not configured")
		return VerifyOutcome{}, errors.New("payment gateway not configured")
	}

	p, err := u.payments.GetByTxRef(ctx, txRef)
	if err != nil {
		log.Printf("[payment][usecase] payment lookup failed tx_ref=%s err=%v", txRef, err)
		return VerifyOutcome{}, err
	}
	if p.TxRef == "" {
		log.Printf("[payment][usecase] payment not found tx_ref=%s", txRef)
		return VerifyOutcome{}, ErrPaymentNotFound
	}

	result, err := u.gateway.VerifyPayment(ctx, txRef)
	if err != nil {
		// Ledger untouched; caller sees the gateway failure.
		log.Printf("[payment][usecase] gateway verify failed tx_ref=%s err=%v", txRef, err)
		return VerifyOutcome{}, err
	}

	mapped := entities.MapGatewayStatus(result.Status)
	updated, transitioned, err := u.payments.FinalizeStatus(ctx, txRef, mapped, result.GatewayRef)
	if err != nil {
		log.Printf("[payment][usecase] finalize failed tx_ref=%s err=%v", txRef, err)
		return VerifyOutcome{}, err
	}

	if transitioned && mapped == entities.PaymentStatusCompleted {
		// Fire-and-forget: enqueue failures are not the verifier
		// caller's problem.
		if u.queue != nil {
			if err := u.queue.Enqueue(ctx, interfaces.NotificationTask{PaymentID: updated.ID}); err != nil {
				log.Printf("[payment][usecase] notification enqueue failed payment_id=%s err=%v", updated.ID, err)
			}
		}
	}

	log.Printf("[payment][usecase] verify done tx_ref=%s provider_status=%s payment_status=%s transitioned=%t", txRef, result.Status, updated.Status, transitioned)
	return VerifyOutcome{
		TxRef:         txRef,
		ChapaStatus:   result.Status,
		PaymentStatus: updated.Status,
		Raw:           result.Raw,
		Payment:       updated,
	}, nil
}

func (u *PaymentUseCase) GetByTxRef(ctx context.Context, txRef string) (entities.Payment, error) {
	p, err := u.payments.GetByTxRef(ctx, txRef)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.TxRef == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

// newTxRef generates a fresh globally-unique transaction reference of
// the form booking-<12 hex chars>.
func newTxRef() string {
	return fmt.Sprintf("booking-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
