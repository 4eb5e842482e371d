package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/platefront/ordering-app/utils"
)

// DoorDashConfig holds DoorDash Drive configuration
type DoorDashConfig struct {
	DeveloperID   string
	KeyID         string
	SigningSecret string // base64, untuk JWT auth ke API
	WebhookSecret string // untuk HMAC signature webhook
	BaseURL       string // override untuk test; default API production
}

// DoorDashService handles DoorDash Drive API interactions
type DoorDashService struct {
	config     *DoorDashConfig
	httpClient *http.Client
}

var (
	doordashService *DoorDashService
	doordashOnce    sync.Once
)

const defaultDoorDashBaseURL = "https://openapi.doordash.com"

// Timeout provider sengaja lebih pendek dari timeout request inbound supaya
// provider yang lambat tidak menggantung handler webhook/dashboard.
const providerTimeout = 10 * time.Second

// GetDoorDashService returns singleton instance of DoorDashService
func GetDoorDashService() *DoorDashService {
	doordashOnce.Do(func() {
		cfg := &DoorDashConfig{
			DeveloperID:   os.Getenv("DOORDASH_DEVELOPER_ID"),
			KeyID:         os.Getenv("DOORDASH_KEY_ID"),
			SigningSecret: os.Getenv("DOORDASH_SIGNING_SECRET"),
			WebhookSecret: os.Getenv("DOORDASH_WEBHOOK_SECRET"),
			BaseURL:       os.Getenv("DOORDASH_BASE_URL"),
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultDoorDashBaseURL
		}
		doordashService = NewDoorDashService(cfg)
	})
	return doordashService
}

// NewDoorDashService creates a new instance of DoorDashService
func NewDoorDashService(config *DoorDashConfig) *DoorDashService {
	if config.BaseURL == "" {
		config.BaseURL = defaultDoorDashBaseURL
	}
	return &DoorDashService{
		config: config,
		httpClient: &http.Client{
			Timeout: providerTimeout,
		},
	}
}

// ValidateConfig validates DoorDash configuration
func (ds *DoorDashService) ValidateConfig() error {
	if ds.config.DeveloperID == "" {
		return fmt.Errorf("DOORDASH_DEVELOPER_ID is not set")
	}
	if ds.config.KeyID == "" {
		return fmt.Errorf("DOORDASH_KEY_ID is not set")
	}
	if ds.config.SigningSecret == "" {
		return fmt.Errorf("DOORDASH_SIGNING_SECRET is not set")
	}
	if ds.config.WebhookSecret == "" {
		return fmt.Errorf("DOORDASH_WEBHOOK_SECRET is not set")
	}
	return nil
}

// ProviderQuoteRequest adalah payload quote ke DoorDash Drive.
type ProviderQuoteRequest struct {
	ExternalDeliveryID string    `json:"external_delivery_id"`
	PickupAddress      string    `json:"pickup_address"`
	PickupPhoneNumber  string    `json:"pickup_phone_number"`
	DropoffAddress     string    `json:"dropoff_address"`
	DropoffPhoneNumber string    `json:"dropoff_phone_number"`
	OrderValue         int64     `json:"order_value"` // cents
	PickupTime         time.Time `json:"pickup_time"`
}

// ProviderQuote adalah respons quote/accept dari DoorDash Drive.
type ProviderQuote struct {
	ExternalDeliveryID string `json:"external_delivery_id"`
	DeliveryStatus     string `json:"delivery_status"`
	FeeCents           int64  `json:"fee"`
	Currency           string `json:"currency"`
	ExpiresAt          string `json:"quote_expires_at"`
	TrackingURL        string `json:"tracking_url"`
}

// doordashError adalah bentuk error payload DoorDash.
type doordashError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	FieldErrors []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"field_errors"`
}

// CreateQuote requests a delivery quote from DoorDash Drive.
func (ds *DoorDashService) CreateQuote(ctx context.Context, req ProviderQuoteRequest) (*ProviderQuote, error) {
	url := fmt.Sprintf("%s/drive/v2/quotes", ds.config.BaseURL)
	return ds.postQuote(ctx, url, req)
}

// AcceptQuote confirms a previously requested quote. Kegagalan transient
// (network/5xx/429) di-retry dengan exponential backoff; error validasi 4xx
// tidak pernah di-retry.
func (ds *DoorDashService) AcceptQuote(ctx context.Context, externalDeliveryID, customerPhone string) (*ProviderQuote, error) {
	url := fmt.Sprintf("%s/drive/v2/quotes/%s/accept", ds.config.BaseURL, externalDeliveryID)
	payload := map[string]interface{}{}
	if customerPhone != "" {
		payload["dropoff_phone_number"] = customerPhone
	}

	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, utils.NewProviderTransientError("delivery provider request cancelled", ctx.Err())
			}
			backoff *= 2
		}

		quote, err := ds.doJSON(ctx, http.MethodPost, url, payload)
		if err == nil {
			return quote, nil
		}
		if !utils.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		utils.ErrorLogger.Printf("accept quote attempt %d failed for %s: %v", attempt+1, externalDeliveryID, err)
	}
	return nil, lastErr
}

// CancelDelivery cancels a delivery. Kalau courier sudah di-assign, provider
// menolak dengan conflict dan kita surface-kan sebagai ConflictError.
func (ds *DoorDashService) CancelDelivery(ctx context.Context, externalDeliveryID string) error {
	url := fmt.Sprintf("%s/drive/v2/deliveries/%s/cancel", ds.config.BaseURL, externalDeliveryID)
	_, err := ds.doJSON(ctx, http.MethodPut, url, map[string]interface{}{})
	return err
}

// GetDelivery fetches current delivery state langsung dari provider, untuk
// resinkronisasi manual saat webhook dicurigai hilang.
func (ds *DoorDashService) GetDelivery(ctx context.Context, externalDeliveryID string) (*ProviderQuote, error) {
	url := fmt.Sprintf("%s/drive/v2/deliveries/%s", ds.config.BaseURL, externalDeliveryID)
	return ds.doJSON(ctx, http.MethodGet, url, nil)
}

func (ds *DoorDashService) postQuote(ctx context.Context, url string, req ProviderQuoteRequest) (*ProviderQuote, error) {
	return ds.doJSON(ctx, http.MethodPost, url, req)
}

// doJSON mengirim satu request ke provider dan menormalisasi error shape
// provider ke taksonomi aplikasi.
func (ds *DoorDashService) doJSON(ctx context.Context, method, url string, payload interface{}) (*ProviderQuote, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, utils.NewInternalError(fmt.Errorf("error marshaling request: %w", err))
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, utils.NewInternalError(fmt.Errorf("error creating request: %w", err))
	}

	token, err := ds.authToken()
	if err != nil {
		return nil, utils.NewInternalError(fmt.Errorf("error building auth token: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ds.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewProviderTransientError("delivery provider unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewProviderTransientError("error reading provider response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var quote ProviderQuote
		if err := json.Unmarshal(body, &quote); err != nil {
			return nil, utils.NewInternalError(fmt.Errorf("error unmarshaling provider response: %w", err))
		}
		return &quote, nil
	}

	return nil, ds.normalizeError(resp.StatusCode, body)
}

// normalizeError memetakan status + body provider ke taksonomi error.
// Payload mentah hanya di-log, tidak pernah di-expose ke caller.
func (ds *DoorDashService) normalizeError(statusCode int, body []byte) error {
	utils.ErrorLogger.Printf("DoorDash API error (status %d): %s", statusCode, string(body))

	var ddErr doordashError
	_ = json.Unmarshal(body, &ddErr)

	switch {
	case statusCode == http.StatusConflict || ddErr.Code == "cancel_not_allowed":
		// Courier sudah di-assign; tidak bisa dibatalkan, jangan retry
		return utils.NewConflictError("delivery can no longer be cancelled: a courier has been assigned")
	case statusCode == http.StatusNotFound:
		return utils.NewNotFoundError("delivery not found at provider")
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return utils.NewProviderTransientError("delivery provider temporarily unavailable", nil)
	case statusCode >= 400 && statusCode < 500:
		fields := make(map[string]string, len(ddErr.FieldErrors))
		for _, fe := range ddErr.FieldErrors {
			fields[fe.Field] = fe.Error
		}
		msg := "delivery provider rejected the request"
		if ddErr.Message != "" {
			msg = ddErr.Message
		}
		return utils.NewProviderValidationError(msg, fields)
	default:
		return utils.NewProviderTransientError("unexpected provider response", nil)
	}
}

// authToken membuat JWT auth DoorDash (DD-JWT-V1) dari signing secret.
func (ds *DoorDashService) authToken() (string, error) {
	secret, err := base64.RawURLEncoding.DecodeString(ds.config.SigningSecret)
	if err != nil {
		// Beberapa key di-encode standard base64
		secret, err = base64.StdEncoding.DecodeString(ds.config.SigningSecret)
		if err != nil {
			return "", err
		}
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"aud": "doordash",
		"iss": ds.config.DeveloperID,
		"kid": ds.config.KeyID,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
	})
	token.Header["dd-ver"] = "DD-JWT-V1"
	return token.SignedString(secret)
}

// ValidateWebhookSignature memvalidasi HMAC-SHA256 signature webhook
// terhadap raw body.
func (ds *DoorDashService) ValidateWebhookSignature(body []byte, signature string) bool {
	if ds.config.WebhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(ds.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
