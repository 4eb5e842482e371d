package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"
)

type OrderController struct {
	Orders     *services.OrderService
	Reconciler *services.Reconciler
}

func NewOrderController(orders *services.OrderService, reconciler *services.Reconciler) *OrderController {
	return &OrderController{Orders: orders, Reconciler: reconciler}
}

// GetAllOrders mengembalikan daftar order untuk dashboard store.
// Data bisa basi maksimal selebar TTL cache.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	storeID := storeIDFrom(c)
	if storeID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("store identity missing"))
		return
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context(), storeID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// GetOrderByID mengembalikan detail satu order milik store.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	storeID := storeIDFrom(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), storeID, uint(orderID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateOrderStatus menjalankan transisi status oleh staff:
// accept, ready, complete, cancel. Transisi di luar tabel ditolak 409.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	storeID := storeIDFrom(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Reconciler.ApplyStaffTransition(c.Request.Context(), storeID, uint(orderID), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// SetPrepTimer menyimpan estimasi waktu persiapan order.
func (oc *OrderController) SetPrepTimer(c *gin.Context) {
	storeID := storeIDFrom(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Minutes int `json:"minutes" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Pastikan ordernya memang milik store ini sebelum set timer
	if _, err := oc.Orders.GetOrder(c.Request.Context(), storeID, uint(orderID)); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	oc.Orders.SetPrepTimer(uint(orderID), req.Minutes)
	utils.RespondJSON(c, http.StatusOK, "Prep timer set", gin.H{
		"order_id": orderID,
		"minutes":  req.Minutes,
	})
}

// GetPrepTimer mengembalikan sisa timer persiapan order, 0 kalau tidak ada.
func (oc *OrderController) GetPrepTimer(c *gin.Context) {
	storeID := storeIDFrom(c)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	if _, err := oc.Orders.GetOrder(c.Request.Context(), storeID, uint(orderID)); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	minutes := oc.Orders.GetPrepTimer(uint(orderID))
	utils.RespondJSON(c, http.StatusOK, "Prep timer retrieved", gin.H{
		"order_id": orderID,
		"minutes":  minutes,
	})
}
