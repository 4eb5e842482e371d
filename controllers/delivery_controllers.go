package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"
)

type DeliveryController struct {
	Provider   *services.DoorDashService
	Quotes     *services.QuoteService
	Reconciler *services.Reconciler
}

func NewDeliveryController(provider *services.DoorDashService, quotes *services.QuoteService, reconciler *services.Reconciler) *DeliveryController {
	return &DeliveryController{Provider: provider, Quotes: quotes, Reconciler: reconciler}
}

// deliveryWebhookPayload adalah bentuk event webhook dari DoorDash Drive.
type deliveryWebhookPayload struct {
	ExternalDeliveryID   string     `json:"external_delivery_id"`
	EventName            string     `json:"event_name"`
	EventTime            *time.Time `json:"event_time"`
	Fee                  int64      `json:"fee"`
	TrackingURL          string     `json:"tracking_url"`
	DasherName           string     `json:"dasher_name"`
	DasherPhoneNumber    string     `json:"dasher_phone_number"`
	PickupTimeEstimated  *time.Time `json:"pickup_time_estimated"`
	DropoffTimeEstimated *time.Time `json:"dropoff_time_estimated"`
	SupportReference     string     `json:"support_reference"`
}

// HandleWebhook menerima event status delivery dari provider.
//
// Provider mengirim at-least-once, jadi response 2xx harus berarti "event
// sudah aman diproses atau memang harus di-drop"; hanya kegagalan yang
// layak di-retry yang boleh dibalas 5xx.
func (dc *DeliveryController) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unable to read webhook body"))
		return
	}

	signature := c.GetHeader("X-DoorDash-Signature")
	if !dc.Provider.ValidateWebhookSignature(body, signature) {
		utils.ErrorLogger.Printf("webhook rejected: invalid signature from %s", c.ClientIP())
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid webhook signature"))
		return
	}

	var payload deliveryWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("malformed webhook payload"))
		return
	}
	if payload.ExternalDeliveryID == "" || payload.EventName == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("external_delivery_id and event_name are required"))
		return
	}

	event := services.DeliveryEventPayload{
		EventName:            payload.EventName,
		FeeCents:             payload.Fee,
		TrackingURL:          payload.TrackingURL,
		DasherName:           payload.DasherName,
		DasherPhone:          payload.DasherPhoneNumber,
		PickupTimeEstimated:  payload.PickupTimeEstimated,
		DropoffTimeEstimated: payload.DropoffTimeEstimated,
		SupportReference:     payload.SupportReference,
	}
	if payload.EventTime != nil {
		event.EventTime = *payload.EventTime
	}

	order, err := dc.Reconciler.ApplyDeliveryEvent(c.Request.Context(), payload.ExternalDeliveryID, event)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event processed", gin.H{
		"order_id":        order.ID,
		"delivery_status": order.DeliveryStatus,
	})
}

// RequestQuote meminta quote delivery baru dari provider.
func (dc *DeliveryController) RequestQuote(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		PickupAddress   string `json:"pickup_address" binding:"required"`
		PickupPhone     string `json:"pickup_phone_number"`
		DropoffAddress  string `json:"dropoff_address" binding:"required"`
		DropoffPhone    string `json:"dropoff_phone_number"`
		OrderValueCents int64  `json:"order_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := dc.Quotes.RequestQuote(c.Request.Context(), storeID, services.QuoteInput{
		PickupAddress:   req.PickupAddress,
		PickupPhone:     req.PickupPhone,
		DropoffAddress:  req.DropoffAddress,
		DropoffPhone:    req.DropoffPhone,
		OrderValueCents: req.OrderValueCents,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Quote created", quote)
}

// AcceptQuote mengkonfirmasi quote ke provider dan menempelkannya ke order.
func (dc *DeliveryController) AcceptQuote(c *gin.Context) {
	storeID := storeIDFrom(c)
	externalDeliveryID := c.Param("external_delivery_id")

	var req struct {
		OrderID       uint   `json:"order_id"`
		CustomerPhone string `json:"dropoff_phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := dc.Quotes.AcceptQuote(c.Request.Context(), storeID, externalDeliveryID, req.CustomerPhone, req.OrderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Quote accepted", quote)
}

// CancelDelivery membatalkan delivery selama masih bisa dibatalkan.
// Kalau courier sudah di-assign, provider menolak dan kita balas 409.
func (dc *DeliveryController) CancelDelivery(c *gin.Context) {
	storeID := storeIDFrom(c)
	externalDeliveryID := c.Param("external_delivery_id")

	if err := dc.Quotes.CancelQuote(c.Request.Context(), storeID, externalDeliveryID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Delivery cancelled", gin.H{
		"external_delivery_id": externalDeliveryID,
	})
}
