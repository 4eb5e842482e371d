package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/dashboard"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"
)

// taxRate sederhana flat; per-store tax config belum dibutuhkan.
const taxRate = 0.0825

// StorefrontController melayani sisi customer: browse katalog dan checkout.
type StorefrontController struct {
	DB     *gorm.DB
	Cache  cache.Store
	Orders *services.OrderService
}

func NewStorefrontController(db *gorm.DB, cacheStore cache.Store, orders *services.OrderService) *StorefrontController {
	return &StorefrontController{DB: db, Cache: cacheStore, Orders: orders}
}

// GetStorefront mengembalikan profil store + menu aktif untuk landing page.
func (sc *StorefrontController) GetStorefront(c *gin.Context) {
	storeID := storeIDFrom(c)

	var store models.Store
	if err := sc.DB.First(&store, storeID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("store not found"))
		return
	}

	var menus []models.Menu
	if err := sc.DB.Where("store_id = ? AND active = ?", storeID, true).Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Storefront retrieved successfully", gin.H{
		"store": store,
		"menus": menus,
	})
}

// GetStorefrontItems mengembalikan item yang available saja, cache-aside
// dengan key yang sama dengan katalog admin.
func (sc *StorefrontController) GetStorefrontItems(c *gin.Context) {
	storeID := storeIDFrom(c)
	key := cache.ItemsKey(storeID)

	var items []models.Item
	if cached, found, err := sc.Cache.Get(key); err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Items retrieved successfully", filterAvailable(items))
			return
		}
	}

	err := sc.DB.Preload("ModifierGroups.Modifiers").
		Where("store_id = ?", storeID).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if data, err := json.Marshal(items); err == nil {
		if err := sc.Cache.SetEx(key, string(data), cache.ItemsTTL); err != nil {
			utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Items retrieved successfully", filterAvailable(items))
}

func filterAvailable(items []models.Item) []models.Item {
	available := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.Available {
			available = append(available, item)
		}
	}
	return available
}

type checkoutItem struct {
	ItemID      uint   `json:"item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	ModifierIDs []uint `json:"modifier_ids"`
	Notes       string `json:"notes"`
}

// Checkout membuat order baru dari keranjang customer. Nama dan harga item
// di-snapshot ke order item supaya perubahan katalog tidak mengubah order lama.
func (sc *StorefrontController) Checkout(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		CustomerName  string         `json:"customer_name" binding:"required"`
		CustomerPhone string         `json:"customer_phone" binding:"required"`
		Tip           float64        `json:"tip"`
		Items         []checkoutItem `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order := models.Order{
		StoreID:       storeID,
		OrderNumber:   generateOrderNumber(),
		Status:        models.OrderStatusNew,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Tip:           req.Tip,
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		var orderItems []models.OrderItem

		for _, line := range req.Items {
			var item models.Item
			if err := tx.Preload("ModifierGroups.Modifiers").
				Where("store_id = ? AND available = ?", storeID, true).
				First(&item, line.ItemID).Error; err != nil {
				return utils.NewValidationError(fmt.Sprintf("item %d is not available", line.ItemID))
			}

			lineTotal, modifiersJSON, err := resolveModifiers(item, line.ModifierIDs)
			if err != nil {
				return err
			}

			linePrice := item.Price + lineTotal
			subtotal += linePrice * float64(line.Quantity)

			orderItems = append(orderItems, models.OrderItem{
				ItemID:    item.ID,
				Name:      item.Name,
				Quantity:  line.Quantity,
				Price:     linePrice,
				Modifiers: modifiersJSON,
				Notes:     line.Notes,
			})
		}

		order.Subtotal = subtotal
		order.Tax = subtotal * taxRate
		order.RecalculateTotal()
		order.OrderItems = orderItems

		return tx.Create(&order).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	// Order baru harus segera muncul di dashboard
	sc.Orders.InvalidateOrders(storeID)
	sc.Orders.ScheduleRefresh(storeID)
	dashboard.BroadcastOrderUpdate(order)

	utils.InfoLogger.Printf("New order %s created for store %d (total %.2f)", order.OrderNumber, storeID, order.Total)
	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", order)
}

// TrackOrder mengembalikan status order + delivery untuk halaman tracking
// customer, dicari berdasarkan order number + phone.
func (sc *StorefrontController) TrackOrder(c *gin.Context) {
	storeID := storeIDFrom(c)
	orderNumber := c.Param("order_number")
	phone := c.Query("phone")
	if phone == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone is required"))
		return
	}

	var order models.Order
	err := sc.DB.Preload("OrderItems").
		Where("store_id = ? AND order_number = ? AND customer_phone = ?", storeID, orderNumber, phone).
		First(&order).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order retrieved successfully", gin.H{
		"order_number":            order.OrderNumber,
		"status":                  order.Status,
		"delivery_status":         order.DeliveryStatus,
		"delivery_display_status": order.DeliveryDisplayStatus,
		"tracking_url":            order.TrackingURL,
		"courier_name":            order.CourierName,
		"dropoff_time_estimated":  order.DropoffTimeEstimated,
		"total":                   order.Total,
		"items":                   order.OrderItems,
	})
}

// resolveModifiers memvalidasi pilihan modifier terhadap batas group dan
// mengembalikan total harga modifier + snapshot JSON-nya.
func resolveModifiers(item models.Item, modifierIDs []uint) (float64, string, error) {
	if len(modifierIDs) == 0 {
		for _, group := range item.ModifierGroups {
			if group.MinSelect > 0 {
				return 0, "", utils.NewValidationError(fmt.Sprintf("group %q requires at least %d selection(s)", group.Name, group.MinSelect))
			}
		}
		return 0, "", nil
	}

	selected := make(map[uint]bool, len(modifierIDs))
	for _, id := range modifierIDs {
		selected[id] = true
	}

	var total float64
	var snapshot []map[string]interface{}
	for _, group := range item.ModifierGroups {
		var count int
		for _, modifier := range group.Modifiers {
			if selected[modifier.ID] {
				count++
				total += modifier.Price
				snapshot = append(snapshot, map[string]interface{}{
					"group": group.Name,
					"name":  modifier.Name,
					"price": modifier.Price,
				})
				delete(selected, modifier.ID)
			}
		}
		if count < group.MinSelect {
			return 0, "", utils.NewValidationError(fmt.Sprintf("group %q requires at least %d selection(s)", group.Name, group.MinSelect))
		}
		if group.MaxSelect > 0 && count > group.MaxSelect {
			return 0, "", utils.NewValidationError(fmt.Sprintf("group %q allows at most %d selection(s)", group.Name, group.MaxSelect))
		}
	}
	if len(selected) > 0 {
		return 0, "", utils.NewValidationError("one or more modifiers do not belong to this item")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return 0, "", utils.NewInternalError(err)
	}
	return total, string(data), nil
}

// generateOrderNumber menghasilkan nomor order pendek yang enak dibaca
// customer, mis. ORD-20260901-3F2A.
func generateOrderNumber() string {
	suffix := strings.ToUpper(fmt.Sprintf("%04x", time.Now().UnixNano()&0xFFFF))
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
