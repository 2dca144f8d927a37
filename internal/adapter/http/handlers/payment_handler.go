package handlers

import (
	"errors"
	"log"
	"net/http"

	"safarpay/internal/adapter/http/dto/request"
	"safarpay/internal/adapter/http/dto/response"
	"safarpay/internal/usecase"
	"safarpay/internal/usecase/interfaces"
	"safarpay/pkg"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles HTTP requests for the payment lifecycle.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// InitializePayment starts a gateway transaction and records a pending
// payment.
//
// @Summary      Initialize a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body body request.InitializePaymentRequest true "initialize parameters"
// @Success      201 {object} response.InitializePaymentResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      502 {object} pkg.HTTPError
// @Router       /payments/initialize [post]
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	var req request.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[payment][handler] invalid payload err=%v", err)
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	req = req.Normalized()
	log.Printf("[payment][handler] initialize start booking_id=%q tx_ref=%q", req.BookingID, req.TxRef)

	result, err := h.usecase.InitiatePayment(c.Request.Context(), usecase.InitiateParams{
		Amount:           req.Amount,
		Currency:         req.Currency,
		BookingID:        req.BookingID,
		BookingReference: req.BookingReference,
		CustomerEmail:    req.CustomerEmail,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		TxRef:            req.TxRef,
		ReturnURL:        req.ReturnURL,
		CallbackURL:      req.CallbackURL,
	})
	if err != nil {
		log.Printf("[payment][handler] initialize failed tx_ref=%q err=%v", req.TxRef, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] initialize success tx_ref=%s payment_id=%s", result.Payment.TxRef, result.Payment.ID)

	c.JSON(http.StatusCreated, response.InitializePaymentResponse{
		Payment:     response.FromPayment(result.Payment),
		CheckoutURL: result.CheckoutURL,
	})
}

// VerifyPayment re-derives the transaction outcome from the provider
// and reconciles the ledger.
//
// @Summary      Verify a payment with the provider
// @Tags         payments
// @Produce      json
// @Param        tx_ref path string true "transaction reference"
// @Success      200 {object} response.VerifyPaymentResponse
// @Failure      404 {object} pkg.HTTPError
// @Failure      502 {object} pkg.HTTPError
// @Router       /payments/verify/{tx_ref} [get]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	h.verify(c, c.Param("tx_ref"))
}

// Callback receives the provider's notification (or the browser
// redirect) after a payment attempt. The inbound status and ref_id are
// untrusted and deliberately ignored; only the transaction reference is
// read and the outcome is re-derived via the verify round trip.
//
// @Summary      Provider callback / return endpoint
// @Tags         payments
// @Produce      json
// @Param        trx_ref query string false "transaction reference"
// @Param        tx_ref  query string false "transaction reference (alternate name)"
// @Success      200 {object} response.VerifyPaymentResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      404 {object} pkg.HTTPError
// @Failure      502 {object} pkg.HTTPError
// @Router       /payments/callback [get]
func (h *PaymentHandler) Callback(c *gin.Context) {
	txRef := c.Query("trx_ref")
	if txRef == "" {
		txRef = c.Query("tx_ref")
	}
	if txRef == "" {
		log.Printf("[payment][handler] callback without transaction reference")
		appErr := pkg.NewDomainErrorSimple("MISSING_TX_REF", "trx_ref (tx_ref) is required", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	h.verify(c, txRef)
}

func (h *PaymentHandler) verify(c *gin.Context, txRef string) {
	log.Printf("[payment][handler] verify start tx_ref=%s", txRef)

	outcome, err := h.usecase.VerifyPayment(c.Request.Context(), txRef)
	if err != nil {
		log.Printf("[payment][handler] verify failed tx_ref=%s err=%v", txRef, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] verify success tx_ref=%s payment_status=%s", txRef, outcome.PaymentStatus)

	c.JSON(http.StatusOK, response.VerifyPaymentResponse{
		TxRef:         outcome.TxRef,
		ChapaStatus:   outcome.ChapaStatus,
		PaymentStatus: string(outcome.PaymentStatus),
		Raw:           outcome.Raw,
	})
}

// GetPayment returns the stored ledger record for a transaction
// reference.
//
// @Summary      Read a payment
// @Tags         payments
// @Produce      json
// @Param        tx_ref path string true "transaction reference"
// @Success      200 {object} response.PaymentResponse
// @Failure      404 {object} pkg.HTTPError
// @Router       /payments/{tx_ref} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	txRef := c.Param("tx_ref")

	p, err := h.usecase.GetByTxRef(c.Request.Context(), txRef)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(p))
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrAmountRequired):
		return pkg.NewDomainErrorSimple("AMOUNT_REQUIRED", "amount is required", http.StatusBadRequest)
	case errors.Is(err, interfaces.ErrTxRefExists):
		return pkg.NewDomainErrorSimple("TX_REF_EXISTS", "tx_ref already used", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrBookingNotFound):
		return pkg.NewDomainErrorSimple("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found for tx_ref", http.StatusNotFound)
	case errors.Is(err, interfaces.ErrGatewayRejected):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_REJECTED", "Payment provider returned an error", http.StatusBadRequest).WithDetails(gatewayBody(err))
	case errors.Is(err, interfaces.ErrGatewayUnavailable):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_UNAVAILABLE", "Failed to reach payment provider", http.StatusBadGateway).WithDetails(gatewayBody(err))
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

// gatewayBody pulls the provider's raw response out of a GatewayError
// so clients get it back for diagnostics.
func gatewayBody(err error) any {
	var gwErr *interfaces.GatewayError
	if errors.As(err, &gwErr) && len(gwErr.Body) > 0 {
		return gwErr.Body
	}
	return nil
}
