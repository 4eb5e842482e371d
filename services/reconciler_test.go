package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

func setupReconcilerTest(t *testing.T) (*gorm.DB, *OrderService, *Reconciler) {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Store{}, &models.Order{}, &models.OrderItem{}, &models.Notification{},
	))

	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	orders := NewOrderService(db, store)
	return db, orders, NewReconciler(db, orders)
}

func seedDeliveryOrder(t *testing.T, db *gorm.DB, externalID string) models.Order {
	t.Helper()
	order := models.Order{
		StoreID:            1,
		OrderNumber:        "ORD-20260901-0001",
		Status:             models.OrderStatusAccepted,
		Subtotal:           40,
		Tax:                3.3,
		ExternalDeliveryID: &externalID,
		DeliveryStatus:     models.DeliveryStatusCreated,
	}
	order.RecalculateTotal()
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestApplyDeliveryEventLifecycle(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-1")
	ctx := context.Background()

	eventTime := time.Now().Add(-time.Minute)
	order, err := rec.ApplyDeliveryEvent(ctx, "ext-1", DeliveryEventPayload{
		EventName: "DASHER_CONFIRMED",
		EventTime: eventTime,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusConfirmed, order.DeliveryStatus)

	order, err = rec.ApplyDeliveryEvent(ctx, "ext-1", DeliveryEventPayload{
		EventName:   "DASHER_PICKED_UP",
		EventTime:   eventTime.Add(10 * time.Second),
		DasherName:  "Alex",
		DasherPhone: "+15550001111",
		TrackingURL: "https://track.example/ext-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPickedUp, order.DeliveryStatus)
	assert.Equal(t, "Order picked up", order.DeliveryDisplayStatus)
	assert.Equal(t, "Alex", order.CourierName)
	assert.Equal(t, "https://track.example/ext-1", order.TrackingURL)
}

func TestApplyDeliveryEventDuplicateIsNoop(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-dup")
	ctx := context.Background()

	first, err := rec.ApplyDeliveryEvent(ctx, "ext-dup", DeliveryEventPayload{
		EventName: "DASHER_CONFIRMED",
		EventTime: time.Now(),
	})
	require.NoError(t, err)
	firstEventTime := first.LastEventTime
	require.NotNil(t, firstEventTime)

	// Provider mengirim ulang event yang sama
	second, err := rec.ApplyDeliveryEvent(ctx, "ext-dup", DeliveryEventPayload{
		EventName: "DASHER_CONFIRMED",
		EventTime: time.Now().Add(time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusConfirmed, second.DeliveryStatus)
	// Bookkeeping event tidak bergeser oleh duplikat
	require.NotNil(t, second.LastEventTime)
	assert.True(t, second.LastEventTime.Equal(*firstEventTime))
}

func TestApplyDeliveryEventStaleTimestampSkipped(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-stale")
	ctx := context.Background()

	now := time.Now()
	_, err := rec.ApplyDeliveryEvent(ctx, "ext-stale", DeliveryEventPayload{
		EventName: "DASHER_PICKED_UP",
		EventTime: now,
	})
	require.NoError(t, err)

	// Event lama datang terlambat
	order, err := rec.ApplyDeliveryEvent(ctx, "ext-stale", DeliveryEventPayload{
		EventName: "DASHER_CONFIRMED",
		EventTime: now.Add(-5 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPickedUp, order.DeliveryStatus)
	assert.Equal(t, "Order picked up", order.DeliveryDisplayStatus)
}

func TestApplyDeliveryEventRegressionRejected(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-reg")
	ctx := context.Background()

	now := time.Now()
	_, err := rec.ApplyDeliveryEvent(ctx, "ext-reg", DeliveryEventPayload{
		EventName: "DASHER_PICKED_UP",
		EventTime: now,
	})
	require.NoError(t, err)

	// Event dengan rank lebih rendah tapi timestamp lebih baru: tetap regresi
	order, err := rec.ApplyDeliveryEvent(ctx, "ext-reg", DeliveryEventPayload{
		EventName: "DASHER_ENROUTE_TO_PICKUP",
		EventTime: now.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusPickedUp, order.DeliveryStatus)
}

func TestApplyDeliveryEventTerminalAbsorbing(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-term")
	ctx := context.Background()

	now := time.Now()
	_, err := rec.ApplyDeliveryEvent(ctx, "ext-term", DeliveryEventPayload{
		EventName: "DELIVERY_DELIVERED",
		EventTime: now,
	})
	require.NoError(t, err)

	order, err := rec.ApplyDeliveryEvent(ctx, "ext-term", DeliveryEventPayload{
		EventName: "DASHER_ENROUTE_TO_DROPOFF",
		EventTime: now.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusDelivered, order.DeliveryStatus)
}

func TestApplyDeliveryEventUnknownEventRejected(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seeded := seedDeliveryOrder(t, db, "ext-unknown")

	_, err := rec.ApplyDeliveryEvent(context.Background(), "ext-unknown", DeliveryEventPayload{
		EventName: "DASHER_TELEPORTED",
		EventTime: time.Now(),
	})
	require.Error(t, err)
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindValidation, appErr.Kind)

	// Order tidak disentuh
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, seeded.ID).Error)
	assert.Equal(t, models.DeliveryStatusCreated, reloaded.DeliveryStatus)
	assert.Empty(t, reloaded.LastEventName)
}

func TestApplyDeliveryEventUnknownDelivery(t *testing.T) {
	_, _, rec := setupReconcilerTest(t)

	_, err := rec.ApplyDeliveryEvent(context.Background(), "no-such-id", DeliveryEventPayload{
		EventName: "DASHER_CONFIRMED",
		EventTime: time.Now(),
	})
	require.Error(t, err)
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindNotFound, appErr.Kind)
}

func TestApplyDeliveryEventTerminalWritesNotification(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	seedDeliveryOrder(t, db, "ext-notif")

	_, err := rec.ApplyDeliveryEvent(context.Background(), "ext-notif", DeliveryEventPayload{
		EventName: "DELIVERY_DELIVERED",
		EventTime: time.Now(),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("store_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyStaffTransition(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	ctx := context.Background()

	order := models.Order{StoreID: 1, OrderNumber: "ORD-1", Status: models.OrderStatusNew}
	require.NoError(t, db.Create(&order).Error)

	updated, err := rec.ApplyStaffTransition(ctx, 1, order.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)

	// Klik ganda: no-op, bukan error
	updated, err = rec.ApplyStaffTransition(ctx, 1, order.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)

	// Lompat ke completed tanpa ready: ditolak
	_, err = rec.ApplyStaffTransition(ctx, 1, order.ID, models.OrderStatusCompleted)
	require.Error(t, err)
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindConflict, appErr.Kind)

	// Status di luar enumerasi
	_, err = rec.ApplyStaffTransition(ctx, 1, order.ID, "shipped")
	require.Error(t, err)
	appErr, ok = utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindValidation, appErr.Kind)

	// Store lain tidak boleh menyentuh order ini
	_, err = rec.ApplyStaffTransition(ctx, 2, order.ID, models.OrderStatusReady)
	require.Error(t, err)
	appErr, ok = utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrKindNotFound, appErr.Kind)
}

func TestCompletedOrderNeverRegressed(t *testing.T) {
	db, _, rec := setupReconcilerTest(t)
	ctx := context.Background()

	order := models.Order{StoreID: 1, OrderNumber: "ORD-2", Status: models.OrderStatusCompleted}
	require.NoError(t, db.Create(&order).Error)

	for _, target := range []string{
		models.OrderStatusNew, models.OrderStatusAccepted,
		models.OrderStatusReady, models.OrderStatusCancelled,
	} {
		_, err := rec.ApplyStaffTransition(ctx, 1, order.ID, target)
		require.Error(t, err, "transition to %s should be rejected", target)
	}

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusCompleted, reloaded.Status)
}
