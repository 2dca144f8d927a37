package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"safarpay/internal/usecase/interfaces"
)

const (
	defaultChapaBaseURL = "https://api.chapa.co/v1"
	initializePath      = "/transaction/initialize"
	verifyPath          = "/transaction/verify/"

	defaultTimeout = 30 * time.Second
)

var ErrMissingChapaSecretKey = errors.New("missing CHAPA_SECRET_KEY")

// ChapaConfig holds the provider credentials and endpoints. It is
// injected at construction so tests and multi-tenant deployments can
// carry their own secrets instead of reading a process-wide global.
type ChapaConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// NewChapaConfigFromEnv reads CHAPA_SECRET_KEY and (optionally)
// CHAPA_BASE_URL.
func NewChapaConfigFromEnv() ChapaConfig {
	base := strings.TrimSpace(os.Getenv("CHAPA_BASE_URL"))
	if base == "" {
		base = defaultChapaBaseURL
	}
	return ChapaConfig{
		BaseURL:   strings.TrimRight(base, "/"),
		SecretKey: strings.TrimSpace(os.Getenv("CHAPA_SECRET_KEY")),
		Timeout:   defaultTimeout,
	}
}

// ChapaGateway is a thin HTTP wrapper over the Chapa transaction API.
// Each call is a single synchronous attempt; no retries, no caching.
type ChapaGateway struct {
	cfg        ChapaConfig
	httpClient *http.Client
}

var _ interfaces.IPaymentGateway = (*ChapaGateway)(nil)

func NewChapaGateway(cfg ChapaConfig) (*ChapaGateway, error) {
	if cfg.SecretKey == "" {
		log.Printf("[payment][gateway] missing CHAPA_SECRET_KEY")
		return nil, ErrMissingChapaSecretKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultChapaBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	log.Printf("[payment][gateway] Chapa client initialized base_url=%s", cfg.BaseURL)
	return &ChapaGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// chapaEnvelope is the provider's response wrapper:
// {"status":"success","message":"...","data":{...}}.
type chapaEnvelope struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    chapaData `json:"data"`
}

type chapaData struct {
	CheckoutURL string  `json:"checkout_url"`
	RefID       string  `json:"ref_id"`
	Ref         string  `json:"ref"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
}

func (d chapaData) gatewayRef() string {
	if d.RefID != "" {
		return d.RefID
	}
	return d.Ref
}

type chapaInitializeBody struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

func (g *ChapaGateway) InitializePayment(ctx context.Context, req interfaces.GatewayInitializeRequest) (interfaces.GatewayInitializeResult, error) {
	log.Printf("[payment][gateway] initialize start tx_ref=%s amount=%d currency=%s", req.TxRef, req.Amount, req.Currency)

	body, err := json.Marshal(chapaInitializeBody{
		Amount:      req.Amount,
		Currency:    req.Currency,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		return interfaces.GatewayInitializeResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+initializePath, bytes.NewReader(body))
	if err != nil {
		return interfaces.GatewayInitializeResult{}, err
	}
	g.setHeaders(httpReq)

	raw, statusCode, err := g.do(httpReq)
	if err != nil {
		log.Printf("[payment][gateway] initialize failed tx_ref=%s err=%v", req.TxRef, err)
		return interfaces.GatewayInitializeResult{}, err
	}

	var envelope chapaEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("[payment][gateway] initialize response unmarshal failed tx_ref=%s err=%v", req.TxRef, err)
		return interfaces.GatewayInitializeResult{}, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, StatusCode: statusCode, Body: raw}
	}
	if envelope.Status != "success" {
		log.Printf("[payment][gateway] initialize rejected tx_ref=%s provider_status=%s message=%s", req.TxRef, envelope.Status, envelope.Message)
		return interfaces.GatewayInitializeResult{}, &interfaces.GatewayError{Err: interfaces.ErrGatewayRejected, StatusCode: statusCode, Body: raw}
	}

	log.Printf("[payment][gateway] initialize success tx_ref=%s gateway_ref=%s", req.TxRef, envelope.Data.gatewayRef())
	return interfaces.GatewayInitializeResult{
		CheckoutURL: envelope.Data.CheckoutURL,
		GatewayRef:  envelope.Data.gatewayRef(),
		Raw:         raw,
	}, nil
}

func (g *ChapaGateway) VerifyPayment(ctx context.Context, txRef string) (interfaces.GatewayVerifyResult, error) {
	log.Printf("[payment][gateway] verify start tx_ref=%s", txRef)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+verifyPath+txRef, nil)
	if err != nil {
		return interfaces.GatewayVerifyResult{}, err
	}
	g.setHeaders(httpReq)

	raw, statusCode, err := g.do(httpReq)
	if err != nil {
		log.Printf("[payment][gateway] verify failed tx_ref=%s err=%v", txRef, err)
		return interfaces.GatewayVerifyResult{}, err
	}

	var envelope chapaEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("[payment][gateway] verify response unmarshal failed tx_ref=%s err=%v", txRef, err)
		return interfaces.GatewayVerifyResult{}, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, StatusCode: statusCode, Body: raw}
	}

	log.Printf("[payment][gateway] verify success tx_ref=%s provider_status=%s gateway_ref=%s", txRef, envelope.Data.Status, envelope.Data.gatewayRef())
	return interfaces.GatewayVerifyResult{
		Status:     envelope.Data.Status,
		GatewayRef: envelope.Data.gatewayRef(),
		Amount:     envelope.Data.Amount,
		Raw:        raw,
	}, nil
}

func (g *ChapaGateway) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
}

// do executes the request and reads the body. Transport failures and
// non-2xx responses both come back as ErrGatewayUnavailable.
func (g *ChapaGateway) do(req *http.Request) (json.RawMessage, int, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		body, _ := json.Marshal(map[string]string{"error": err.Error()})
		return nil, 0, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, Body: body}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &interfaces.GatewayError{Err: interfaces.ErrGatewayUnavailable, StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, resp.StatusCode, nil
}
