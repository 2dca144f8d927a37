package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"safarpay/internal/adapter/http/handlers/mocks"
	"safarpay/internal/domain/entities"
	"safarpay/internal/usecase"
	"safarpay/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newPaymentRouter(uc usecase.IPaymentUseCase) *gin.Engine {
	r := gin.New()
	h := NewPaymentHandler(uc)
	r.POST("/v1/payments/initialize", h.InitializePayment)
	r.GET("/v1/payments/verify/:tx_ref", h.VerifyPayment)
	r.GET("/v1/payments/callback", h.Callback)
	r.GET("/v1/payments/:tx_ref", h.GetPayment)
	return r
}

func TestPaymentHandler_InitializePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/initialize", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("amount required", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(usecase.InitiateResult{}, usecase.ErrAmountRequired)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/initialize", bytes.NewBufferString(`{"currency":"ETB"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(usecase.InitiateResult{}, usecase.ErrBookingNotFound)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/initialize", bytes.NewBufferString(`{"booking_id":"bk-404"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("gateway unreachable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		gwErr := &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, Body: json.RawMessage(`{"error":"timeout"}`)}
		uc.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).Return(usecase.InitiateResult{}, gwErr)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/initialize", bytes.NewBufferString(`{"amount":500}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["details"] == nil {
			t.Fatalf("expected provider body in details: %s", w.Body.String())
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		amount := 500.0
		uc.EXPECT().InitiatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, params usecase.InitiateParams) (usecase.InitiateResult, error) {
				if params.Amount == nil || *params.Amount != amount {
					t.Fatalf("amount not forwarded: %+v", params)
				}
				if params.CustomerEmail != "a@x.com" {
					t.Fatalf("email not forwarded: %+v", params)
				}
				return usecase.InitiateResult{
					Payment: entities.Payment{
						ID:     "p1",
						TxRef:  "booking-abc",
						Amount: amount,
						Status: entities.PaymentStatusPending,
					},
					CheckoutURL: "https://pay/x",
				}, nil
			})

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/initialize", bytes.NewBufferString(`{"amount":500,"currency":"ETB","customer_email":"a@x.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			Payment struct {
				TxRef  string `json:"tx_ref"`
				Status string `json:"status"`
			} `json:"payment"`
			CheckoutURL string `json:"checkout_url"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid body: %v", err)
		}
		if body.CheckoutURL != "https://pay/x" || body.Payment.Status != "pending" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_VerifyPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().VerifyPayment(gomock.Any(), "tx-404").Return(usecase.VerifyOutcome{}, usecase.ErrPaymentNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/verify/tx-404", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().VerifyPayment(gomock.Any(), "tx-1").Return(usecase.VerifyOutcome{}, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable})

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/verify/tx-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().VerifyPayment(gomock.Any(), "tx-1").Return(usecase.VerifyOutcome{
			TxRef:         "tx-1",
			ChapaStatus:   "success",
			PaymentStatus: entities.PaymentStatusCompleted,
			Raw:           json.RawMessage(`{"data":{"status":"success"}}`),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/verify/tx-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["tx_ref"] != "tx-1" || body["chapa_status"] != "success" || body["payment_status"] != "completed" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
		if body["raw"] == nil {
			t.Fatalf("expected raw provider response: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_Callback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/callback?status=success", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("forged status is ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		// The callback claims success; the verifier's authoritative
		// round trip says the payment failed.
		uc.EXPECT().VerifyPayment(gomock.Any(), "tx-1").Return(usecase.VerifyOutcome{
			TxRef:         "tx-1",
			ChapaStatus:   "failed",
			PaymentStatus: entities.PaymentStatusFailed,
			Raw:           json.RawMessage(`{}`),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/callback?trx_ref=tx-1&ref_id=R1&status=success", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["payment_status"] != "failed" {
			t.Fatalf("forged callback status must not win: %s", w.Body.String())
		}
	})

	t.Run("accepts tx_ref alias", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().VerifyPayment(gomock.Any(), "tx-2").Return(usecase.VerifyOutcome{TxRef: "tx-2", ChapaStatus: "success", PaymentStatus: entities.PaymentStatusCompleted, Raw: json.RawMessage(`{}`)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/callback?tx_ref=tx-2", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().GetByTxRef(gomock.Any(), "tx-404").Return(entities.Payment{}, usecase.ErrPaymentNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/tx-404", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		r := newPaymentRouter(uc)

		uc.EXPECT().GetByTxRef(gomock.Any(), "tx-1").Return(entities.Payment{ID: "p1", TxRef: "tx-1", Status: entities.PaymentStatusCompleted}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/tx-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["id"] != "p1" || body["status"] != "completed" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}
