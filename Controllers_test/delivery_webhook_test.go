package Controllers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/controllers"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"
)

const testWebhookSecret = "test-webhook-secret"

func setupWebhookTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.DeliveryQuote{}, &models.Notification{},
	))

	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	provider := services.NewDoorDashService(&services.DoorDashConfig{
		DeveloperID:   "dev-test",
		KeyID:         "key-test",
		SigningSecret: "c2VjcmV0LXNpZ25pbmcta2V5",
		WebhookSecret: testWebhookSecret,
	})
	orders := services.NewOrderService(db, store)
	reconciler := services.NewReconciler(db, orders)
	quotes := services.NewQuoteService(db, store, provider, orders)

	deliveryCtrl := controllers.NewDeliveryController(provider, quotes, reconciler)

	router := gin.Default()
	router.POST("/webhooks/doordash", deliveryCtrl.HandleWebhook)
	return db, router
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/webhooks/doordash", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DoorDash-Signature", signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookAppliesDeliveryEvent(t *testing.T) {
	db, router := setupWebhookTest(t)

	externalID := "ext-wh-1"
	order := models.Order{
		StoreID:            1,
		OrderNumber:        "ORD-WH-1",
		Status:             models.OrderStatusAccepted,
		ExternalDeliveryID: &externalID,
		DeliveryStatus:     models.DeliveryStatusCreated,
	}
	require.NoError(t, db.Create(&order).Error)

	payload := map[string]interface{}{
		"external_delivery_id": externalID,
		"event_name":           "DASHER_PICKED_UP",
		"event_time":           time.Now().Format(time.RFC3339),
		"dasher_name":          "Alex",
		"dasher_phone_number":  "+15550001111",
		"tracking_url":         "https://track.example/ext-wh-1",
	}
	body, _ := json.Marshal(payload)

	w := postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.DeliveryStatusPickedUp, reloaded.DeliveryStatus)
	assert.Equal(t, "Order picked up", reloaded.DeliveryDisplayStatus)
	assert.Equal(t, "Alex", reloaded.CourierName)
	// Fulfillment status tidak disentuh webhook
	assert.Equal(t, models.OrderStatusAccepted, reloaded.Status)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	db, router := setupWebhookTest(t)

	externalID := "ext-wh-2"
	require.NoError(t, db.Create(&models.Order{
		StoreID: 1, OrderNumber: "ORD-WH-2", Status: models.OrderStatusAccepted,
		ExternalDeliveryID: &externalID, DeliveryStatus: models.DeliveryStatusCreated,
	}).Error)

	body := []byte(`{"external_delivery_id":"ext-wh-2","event_name":"DASHER_PICKED_UP"}`)
	w := postWebhook(router, body, "bad-signature")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var reloaded models.Order
	require.NoError(t, db.Where("external_delivery_id = ?", externalID).First(&reloaded).Error)
	assert.Equal(t, models.DeliveryStatusCreated, reloaded.DeliveryStatus)
}

func TestWebhookUnknownDeliveryReturns404(t *testing.T) {
	_, router := setupWebhookTest(t)

	body := []byte(`{"external_delivery_id":"no-such","event_name":"DASHER_PICKED_UP"}`)
	w := postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookUnknownEventReturns400(t *testing.T) {
	db, router := setupWebhookTest(t)

	externalID := "ext-wh-3"
	require.NoError(t, db.Create(&models.Order{
		StoreID: 1, OrderNumber: "ORD-WH-3", Status: models.OrderStatusAccepted,
		ExternalDeliveryID: &externalID, DeliveryStatus: models.DeliveryStatusCreated,
	}).Error)

	body := []byte(`{"external_delivery_id":"ext-wh-3","event_name":"DASHER_LEVITATED"}`)
	w := postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookDuplicateDeliveryReturns200(t *testing.T) {
	db, router := setupWebhookTest(t)

	externalID := "ext-wh-4"
	require.NoError(t, db.Create(&models.Order{
		StoreID: 1, OrderNumber: "ORD-WH-4", Status: models.OrderStatusAccepted,
		ExternalDeliveryID: &externalID, DeliveryStatus: models.DeliveryStatusCreated,
	}).Error)

	body := []byte(`{"external_delivery_id":"ext-wh-4","event_name":"DASHER_CONFIRMED"}`)
	w := postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusOK, w.Code)

	// Duplikat tetap 200 supaya provider berhenti retry
	w = postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookMissingFieldsReturns400(t *testing.T) {
	_, router := setupWebhookTest(t)

	body := []byte(`{"event_name":"DASHER_CONFIRMED"}`)
	w := postWebhook(router, body, signBody(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
