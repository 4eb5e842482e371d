package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/dashboard"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

// pickupLeadTime adalah estimasi kapan order siap diambil courier.
const pickupLeadTime = 30 * time.Minute

// QuoteInput adalah permintaan quote dari dashboard/storefront.
type QuoteInput struct {
	PickupAddress   string
	PickupPhone     string
	DropoffAddress  string
	DropoffPhone    string
	OrderValueCents int64
}

// QuoteService mengorkestrasi quote delivery: minta quote ke provider,
// simpan + cache, lalu accept atau cancel.
type QuoteService struct {
	db       *gorm.DB
	cache    cache.Store
	provider *DoorDashService
	orders   *OrderService
}

func NewQuoteService(db *gorm.DB, cacheStore cache.Store, provider *DoorDashService, orders *OrderService) *QuoteService {
	return &QuoteService{db: db, cache: cacheStore, provider: provider, orders: orders}
}

// RequestQuote meminta quote baru ke provider. Setiap attempt memakai
// external delivery id acak yang baru, tidak pernah di-reuse.
func (qs *QuoteService) RequestQuote(ctx context.Context, storeID uint, input QuoteInput) (*models.DeliveryQuote, error) {
	if input.PickupAddress == "" {
		return nil, utils.NewValidationError("pickup address is required")
	}
	if input.DropoffAddress == "" {
		return nil, utils.NewValidationError("dropoff address is required")
	}

	externalID := uuid.NewString()

	providerQuote, err := qs.provider.CreateQuote(ctx, ProviderQuoteRequest{
		ExternalDeliveryID: externalID,
		PickupAddress:      input.PickupAddress,
		PickupPhoneNumber:  input.PickupPhone,
		DropoffAddress:     input.DropoffAddress,
		DropoffPhoneNumber: input.DropoffPhone,
		OrderValue:         input.OrderValueCents,
		PickupTime:         time.Now().Add(pickupLeadTime),
	})
	if err != nil {
		return nil, err
	}

	quote := models.DeliveryQuote{
		StoreID:            storeID,
		ExternalDeliveryID: externalID,
		PickupAddress:      input.PickupAddress,
		PickupPhone:        input.PickupPhone,
		DropoffAddress:     input.DropoffAddress,
		DropoffPhone:       input.DropoffPhone,
		FeeCents:           providerQuote.FeeCents,
		Currency:           providerQuote.Currency,
		Status:             models.QuoteStatusQuoted,
	}
	if quote.Currency == "" {
		quote.Currency = "USD"
	}
	if providerQuote.ExpiresAt != "" {
		if expires, err := time.Parse(time.RFC3339, providerQuote.ExpiresAt); err == nil {
			quote.ExpiresAt = &expires
		}
	}
	if quote.ExpiresAt == nil {
		expires := time.Now().Add(cache.QuoteTTL)
		quote.ExpiresAt = &expires
	}

	if err := qs.db.WithContext(ctx).Create(&quote).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}

	// Cache dengan TTL selebar validity window quote, bukan tanpa batas
	qs.cacheQuote(&quote)

	return &quote, nil
}

// AcceptQuote mengkonfirmasi quote ke provider dan (opsional) menempelkan
// delivery ke order yang sedang diproses.
func (qs *QuoteService) AcceptQuote(ctx context.Context, storeID uint, externalDeliveryID, customerPhone string, orderID uint) (*models.DeliveryQuote, error) {
	quote, err := qs.findQuote(ctx, storeID, externalDeliveryID)
	if err != nil {
		return nil, err
	}

	if quote.Status == models.QuoteStatusCancelled || quote.Status == models.QuoteStatusExpired {
		return nil, utils.NewConflictError("quote is no longer valid")
	}
	if quote.ExpiresAt != nil && time.Now().After(*quote.ExpiresAt) {
		quote.Status = models.QuoteStatusExpired
		qs.db.WithContext(ctx).Save(quote)
		return nil, utils.NewConflictError("quote has expired, request a new one")
	}

	// Accept di provider; retry transient ditangani di client provider
	providerQuote, err := qs.provider.AcceptQuote(ctx, externalDeliveryID, customerPhone)
	if err != nil {
		return nil, err
	}

	quote.Status = models.QuoteStatusAccepted
	if providerQuote.FeeCents > 0 {
		quote.FeeCents = providerQuote.FeeCents
	}
	quote.UpdatedAt = time.Now()
	if err := qs.db.WithContext(ctx).Save(quote).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	qs.cacheQuote(quote)

	if orderID != 0 {
		if err := qs.attachToOrder(ctx, storeID, orderID, quote, providerQuote); err != nil {
			return nil, err
		}
	}

	dashboard.BroadcastQuoteUpdate(*quote)
	return quote, nil
}

// CancelQuote membatalkan delivery di provider. ConflictError berarti
// courier sudah di-assign dan pembatalan tidak mungkin lagi.
func (qs *QuoteService) CancelQuote(ctx context.Context, storeID uint, externalDeliveryID string) error {
	quote, err := qs.findQuote(ctx, storeID, externalDeliveryID)
	if err != nil {
		return err
	}

	if err := qs.provider.CancelDelivery(ctx, externalDeliveryID); err != nil {
		if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.ErrKindConflict {
			qs.notifyCancelConflict(quote)
		}
		return err
	}

	quote.Status = models.QuoteStatusCancelled
	quote.UpdatedAt = time.Now()
	if err := qs.db.WithContext(ctx).Save(quote).Error; err != nil {
		return utils.NewInternalError(err)
	}

	if err := qs.cache.Delete(cache.QuoteKey(externalDeliveryID)); err != nil {
		utils.ErrorLogger.Printf("cache delete failed for quote %s: %v", externalDeliveryID, err)
	}

	dashboard.BroadcastQuoteUpdate(*quote)
	return nil
}

// findQuote mencari quote di cache dulu, fallback ke DB.
func (qs *QuoteService) findQuote(ctx context.Context, storeID uint, externalDeliveryID string) (*models.DeliveryQuote, error) {
	if cached, found, err := qs.cache.Get(cache.QuoteKey(externalDeliveryID)); err != nil {
		utils.ErrorLogger.Printf("cache get failed for quote %s: %v", externalDeliveryID, err)
	} else if found {
		var quote models.DeliveryQuote
		if err := json.Unmarshal([]byte(cached), &quote); err == nil && quote.StoreID == storeID {
			return &quote, nil
		}
	}

	var quote models.DeliveryQuote
	err := qs.db.WithContext(ctx).
		Where("store_id = ? AND external_delivery_id = ?", storeID, externalDeliveryID).
		First(&quote).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("quote not found")
		}
		return nil, utils.NewInternalError(err)
	}
	return &quote, nil
}

func (qs *QuoteService) attachToOrder(ctx context.Context, storeID, orderID uint, quote *models.DeliveryQuote, providerQuote *ProviderQuote) error {
	var order models.Order
	err := qs.db.WithContext(ctx).Where("store_id = ?", storeID).First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.NewNotFoundError("order not found")
		}
		return utils.NewInternalError(err)
	}

	externalID := quote.ExternalDeliveryID
	order.ExternalDeliveryID = &externalID
	order.DeliveryFee = utils.CentsToDollars(quote.FeeCents)
	order.DeliveryStatus = models.DeliveryStatusCreated
	order.DeliveryDisplayStatus = "Delivery created"
	if providerQuote.TrackingURL != "" {
		order.TrackingURL = providerQuote.TrackingURL
	}
	order.RecalculateTotal()
	order.UpdatedAt = time.Now()

	if err := qs.db.WithContext(ctx).Save(&order).Error; err != nil {
		return utils.NewInternalError(err)
	}

	qs.orders.InvalidateOrders(storeID)
	qs.orders.ScheduleRefresh(storeID)
	return nil
}

func (qs *QuoteService) cacheQuote(quote *models.DeliveryQuote) {
	data, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := qs.cache.SetEx(cache.QuoteKey(quote.ExternalDeliveryID), string(data), cache.QuoteTTL); err != nil {
		utils.ErrorLogger.Printf("cache set failed for quote %s: %v", quote.ExternalDeliveryID, err)
	}
}

func (qs *QuoteService) notifyCancelConflict(quote *models.DeliveryQuote) {
	title := "Cancellation Rejected"
	notification := models.Notification{
		StoreID: quote.StoreID,
		Title:   &title,
		Message: "Delivery " + quote.ExternalDeliveryID + " cannot be cancelled: a courier has already been assigned",
		Type:    "delivery",
		Status:  "unread",
	}
	if err := qs.db.Create(&notification).Error; err != nil {
		utils.ErrorLogger.Printf("failed to write cancel-conflict notification: %v", err)
	}
	dashboard.BroadcastStaffNotification(quote.StoreID, notification.Message)
}
