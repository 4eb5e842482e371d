package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/controllers"
	"github.com/platefront/ordering-app/middlewares"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"
)

func setupOrderTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Notification{}))

	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	orders := services.NewOrderService(db, store)
	reconciler := services.NewReconciler(db, orders)
	orderCtrl := controllers.NewOrderController(orders, reconciler)

	router := gin.Default()
	admin := router.Group("/admin")
	admin.Use(middlewares.StoreResolver())
	admin.GET("/orders", orderCtrl.GetAllOrders)
	admin.GET("/orders/:id", orderCtrl.GetOrderByID)
	admin.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	admin.PUT("/orders/:id/timer", orderCtrl.SetPrepTimer)
	admin.GET("/orders/:id/timer", orderCtrl.GetPrepTimer)
	return db, router
}

func doJSON(router *gin.Engine, method, url string, storeID uint, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if storeID != 0 {
		req.Header.Set("X-Store-ID", fmt.Sprintf("%d", storeID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAllOrdersScopedToStore(t *testing.T) {
	db, router := setupOrderTest(t)

	require.NoError(t, db.Create(&models.Order{StoreID: 1, OrderNumber: "ORD-1", Status: models.OrderStatusNew}).Error)
	require.NoError(t, db.Create(&models.Order{StoreID: 2, OrderNumber: "ORD-2", Status: models.OrderStatusNew}).Error)

	w := doJSON(router, "GET", "/admin/orders", 1, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ORD-1", resp.Data[0].OrderNumber)
}

func TestGetAllOrdersRequiresStoreHeader(t *testing.T) {
	_, router := setupOrderTest(t)

	w := doJSON(router, "GET", "/admin/orders", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateOrderStatusFlow(t *testing.T) {
	db, router := setupOrderTest(t)

	order := models.Order{StoreID: 1, OrderNumber: "ORD-1", Status: models.OrderStatusNew}
	require.NoError(t, db.Create(&order).Error)
	url := fmt.Sprintf("/admin/orders/%d/status", order.ID)

	// new -> accepted -> ready -> completed
	for _, status := range []string{models.OrderStatusAccepted, models.OrderStatusReady, models.OrderStatusCompleted} {
		w := doJSON(router, "PATCH", url, 1, map[string]string{"status": status})
		assert.Equal(t, http.StatusOK, w.Code, "transition to %s", status)
	}

	// Regresi dari terminal: 409
	w := doJSON(router, "PATCH", url, 1, map[string]string{"status": models.OrderStatusReady})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Status tidak dikenal: 400
	w = doJSON(router, "PATCH", url, 1, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Store lain: 404
	w = doJSON(router, "PATCH", url, 2, map[string]string{"status": models.OrderStatusCancelled})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrepTimerEndpoints(t *testing.T) {
	db, router := setupOrderTest(t)

	order := models.Order{StoreID: 1, OrderNumber: "ORD-1", Status: models.OrderStatusAccepted}
	require.NoError(t, db.Create(&order).Error)

	w := doJSON(router, "PUT", fmt.Sprintf("/admin/orders/%d/timer", order.ID), 1, map[string]int{"minutes": 20})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/admin/orders/%d/timer", order.ID), 1, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Minutes int `json:"minutes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.Data.Minutes)
}
