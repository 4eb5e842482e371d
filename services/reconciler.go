package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/ordering-app/dashboard"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

// DeliveryEventPayload adalah isi webhook delivery provider yang relevan
// untuk reconciliation.
type DeliveryEventPayload struct {
	EventName            string
	EventTime            time.Time
	FeeCents             int64
	TrackingURL          string
	DasherName           string
	DasherPhone          string
	PickupTimeEstimated  *time.Time
	DropoffTimeEstimated *time.Time
	SupportReference     string
}

// Reconciler mengaplikasikan event delivery provider dan aksi staff ke satu
// Order, atomik terhadap cache. Update per order diserialisasi lewat mutex
// per order id karena provider bisa mengirim ulang event secara concurrent.
type Reconciler struct {
	db     *gorm.DB
	orders *OrderService

	lockMu sync.Mutex
	locks  map[uint]*sync.Mutex
}

func NewReconciler(db *gorm.DB, orders *OrderService) *Reconciler {
	return &Reconciler{
		db:     db,
		orders: orders,
		locks:  make(map[uint]*sync.Mutex),
	}
}

func (r *Reconciler) lockFor(orderID uint) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	if mu, ok := r.locks[orderID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	r.locks[orderID] = mu
	return mu
}

// ApplyDeliveryEvent mengaplikasikan satu event webhook ke order yang
// memegang external delivery id tersebut.
//
// Delivery webhook bersifat at-least-once dan tidak dijamin urut, jadi:
//   - event dengan nama sama dengan event terakhir -> no-op (idempoten)
//   - event dengan timestamp lebih tua dari event terakhir -> di-skip
//   - regresi sub-status menurut tabel transisi -> ditolak, tidak disimpan
//   - nama event yang tidak dikenal -> error validasi, order tidak disentuh
func (r *Reconciler) ApplyDeliveryEvent(ctx context.Context, externalDeliveryID string, payload DeliveryEventPayload) (*models.Order, error) {
	newStatus, display, ok := models.MapDeliveryEvent(payload.EventName)
	if !ok {
		utils.ErrorLogger.Printf("rejected unknown delivery event %q for delivery %s", payload.EventName, externalDeliveryID)
		return nil, utils.NewValidationError(fmt.Sprintf("unknown delivery event: %s", payload.EventName))
	}

	var probe models.Order
	err := r.db.WithContext(ctx).
		Where("external_delivery_id = ?", externalDeliveryID).
		First(&probe).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("no order for external delivery id")
		}
		return nil, utils.NewInternalError(err)
	}

	mu := r.lockFor(probe.ID)
	mu.Lock()
	defer mu.Unlock()

	// Reload di dalam lock; webhook lain bisa saja sudah menulis
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, probe.ID).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	// Duplikat: event yang sama persis sudah diaplikasikan
	if order.LastEventName == payload.EventName {
		utils.InfoLogger.Printf("duplicate delivery event %s for order %d, skipping", payload.EventName, order.ID)
		return &order, nil
	}

	// Event datang tidak urut: lebih tua dari yang terakhir diaplikasikan
	if order.LastEventTime != nil && !payload.EventTime.IsZero() && payload.EventTime.Before(*order.LastEventTime) {
		utils.InfoLogger.Printf("stale delivery event %s (event_time %s) for order %d, skipping",
			payload.EventName, payload.EventTime.Format(time.RFC3339), order.ID)
		return &order, nil
	}

	// Regresi sub-status ditolak
	if !models.CanTransitionDeliveryStatus(order.DeliveryStatus, newStatus) {
		utils.ErrorLogger.Printf("rejected delivery status regression %s -> %s for order %d",
			order.DeliveryStatus, newStatus, order.ID)
		return &order, nil
	}

	order.DeliveryStatus = newStatus
	order.DeliveryDisplayStatus = display
	if payload.TrackingURL != "" {
		order.TrackingURL = payload.TrackingURL
	}
	if payload.FeeCents > 0 {
		order.DeliveryFee = utils.CentsToDollars(payload.FeeCents)
		order.RecalculateTotal()
	}
	if payload.DasherName != "" {
		order.CourierName = payload.DasherName
	}
	if payload.DasherPhone != "" {
		order.CourierPhone = payload.DasherPhone
	}
	if payload.PickupTimeEstimated != nil {
		order.PickupTimeEstimated = payload.PickupTimeEstimated
	}
	if payload.DropoffTimeEstimated != nil {
		order.DropoffTimeEstimated = payload.DropoffTimeEstimated
	}
	if payload.SupportReference != "" {
		order.SupportReference = payload.SupportReference
	}

	order.LastEventName = payload.EventName
	eventTime := payload.EventTime
	if eventTime.IsZero() {
		eventTime = time.Now()
	}
	order.LastEventTime = &eventTime
	order.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	// Invalidate lalu repopulate async; ack webhook tidak menunggu refresh,
	// dan refresh yang gagal tidak menggagalkan event yang sudah tersimpan.
	r.orders.InvalidateOrders(order.StoreID)
	r.orders.ScheduleRefresh(order.StoreID)

	dashboard.BroadcastDeliveryUpdate(order)

	if models.IsTerminalDeliveryStatus(newStatus) {
		r.notifyStaff(order, display)
	}

	return &order, nil
}

// ApplyStaffTransition mengaplikasikan transisi status fulfillment oleh
// staff (accept/ready/complete/cancel) dengan tabel transisi tertutup.
// Status terminal tidak pernah diregresi.
func (r *Reconciler) ApplyStaffTransition(ctx context.Context, storeID, orderID uint, target string) (*models.Order, error) {
	if !models.IsValidOrderStatus(target) {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid order status: %s", target))
	}

	mu := r.lockFor(orderID)
	mu.Lock()
	defer mu.Unlock()

	var order models.Order
	err := r.db.WithContext(ctx).Preload("OrderItems").
		Where("store_id = ?", storeID).
		First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("order not found")
		}
		return nil, utils.NewInternalError(err)
	}

	if order.Status == target {
		// Idempoten: klik ganda di dashboard bukan error
		return &order, nil
	}

	if !models.CanTransitionOrderStatus(order.Status, target) {
		return nil, utils.NewConflictError(fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}

	order.Status = target
	order.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	// Hapus aggregate key saja; read berikutnya adalah miss yang disengaja
	r.orders.InvalidateOrders(order.StoreID)

	dashboard.BroadcastOrderUpdate(order)

	return &order, nil
}

func (r *Reconciler) notifyStaff(order models.Order, display string) {
	title := "Delivery Update"
	notification := models.Notification{
		StoreID: order.StoreID,
		Title:   &title,
		Message: fmt.Sprintf("Order %s: %s", order.OrderNumber, display),
		Type:    "delivery",
		Status:  "unread",
	}
	if err := r.db.Create(&notification).Error; err != nil {
		utils.ErrorLogger.Printf("failed to write staff notification for order %d: %v", order.ID, err)
	}
	dashboard.BroadcastStaffNotification(order.StoreID, notification.Message)
}
