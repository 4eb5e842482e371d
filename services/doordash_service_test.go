package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefront/ordering-app/utils"
)

func newTestDoorDash(baseURL string) *DoorDashService {
	return NewDoorDashService(&DoorDashConfig{
		DeveloperID:   "dev-123",
		KeyID:         "key-456",
		SigningSecret: "c2VjcmV0LXNpZ25pbmcta2V5",
		WebhookSecret: "webhook-secret",
		BaseURL:       baseURL,
	})
}

func TestCreateQuoteSuccess(t *testing.T) {
	utils.InitLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drive/v2/quotes", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"external_delivery_id":"ext-1","delivery_status":"quote","fee":599,"currency":"USD","quote_expires_at":"2026-09-01T12:00:00Z"}`))
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	quote, err := ds.CreateQuote(context.Background(), ProviderQuoteRequest{
		ExternalDeliveryID: "ext-1",
		PickupAddress:      "1 Store St",
		DropoffAddress:     "2 Home Ave",
		OrderValue:         2500,
		PickupTime:         time.Now().Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(599), quote.FeeCents)
	assert.Equal(t, "USD", quote.Currency)
}

func TestCreateQuoteValidationErrorNotRetried(t *testing.T) {
	utils.InitLogger()
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"validation_error","message":"invalid dropoff address","field_errors":[{"field":"dropoff_address","error":"address could not be geocoded"}]}`))
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	_, err := ds.CreateQuote(context.Background(), ProviderQuoteRequest{ExternalDeliveryID: "ext-bad"})
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindProviderValidation, appErr.Kind)
	assert.False(t, appErr.Retryable())
	assert.Equal(t, "address could not be geocoded", appErr.Fields["dropoff_address"])
	assert.Equal(t, 1, calls)
}

func TestAcceptQuoteRetriesTransientFailures(t *testing.T) {
	utils.InitLogger()
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"external_delivery_id":"ext-2","delivery_status":"created","fee":750}`))
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	quote, err := ds.AcceptQuote(context.Background(), "ext-2", "+15550002222")
	require.NoError(t, err)
	assert.Equal(t, int64(750), quote.FeeCents)
	assert.Equal(t, 3, calls)
}

func TestAcceptQuoteGivesUpAfterThreeAttempts(t *testing.T) {
	utils.InitLogger()
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	_, err := ds.AcceptQuote(context.Background(), "ext-3", "")
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindProviderTransient, appErr.Kind)
	assert.Equal(t, 3, calls)
}

func TestCancelDeliveryConflict(t *testing.T) {
	utils.InitLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"cancel_not_allowed","message":"dasher already assigned"}`))
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	err := ds.CancelDelivery(context.Background(), "ext-4")
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindConflict, appErr.Kind)
	// Pesan provider mentah tidak bocor ke caller
	assert.NotContains(t, appErr.Message, "dasher already assigned")
}

func TestCancelDeliveryNotFound(t *testing.T) {
	utils.InitLogger()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ds := newTestDoorDash(server.URL)
	err := ds.CancelDelivery(context.Background(), "ext-missing")
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindNotFound, appErr.Kind)
}

func TestValidateWebhookSignature(t *testing.T) {
	ds := newTestDoorDash("http://unused")
	body := []byte(`{"external_delivery_id":"ext-1","event_name":"DASHER_PICKED_UP"}`)

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, ds.ValidateWebhookSignature(body, valid))
	assert.False(t, ds.ValidateWebhookSignature(body, "deadbeef"))
	assert.False(t, ds.ValidateWebhookSignature([]byte("tampered"), valid))
}
