package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/dashboard"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// DashboardHandler -> endpoint WebSocket untuk staff dashboard
func DashboardHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	storeIDInterface, exists := c.Get("store_id")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	storeID := storeIDInterface.(uint)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	dashboard.RegisterClient(ws, storeID, role)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	dashboard.UnregisterClient(ws)
}

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetDashboardStats mengembalikan ringkasan harian untuk header dashboard.
func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	storeID := storeIDFrom(c)
	startOfDay := time.Now().Truncate(24 * time.Hour)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := dc.DB.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("store_id = ? AND created_at >= ?", storeID, startOfDay).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	byStatus := make(map[string]int64, len(counts))
	var totalOrders int64
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
		totalOrders += sc.Count
	}

	var revenue float64
	err = dc.DB.Model(&models.Order{}).
		Select("coalesce(sum(total), 0)").
		Where("store_id = ? AND created_at >= ? AND status = ?", storeID, startOfDay, models.OrderStatusCompleted).
		Scan(&revenue).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var activeDeliveries int64
	err = dc.DB.Model(&models.Order{}).
		Where("store_id = ? AND external_delivery_id IS NOT NULL AND delivery_status NOT IN ?",
			storeID, []string{models.DeliveryStatusDelivered, models.DeliveryStatusFailed, models.DeliveryStatusCancelled}).
		Count(&activeDeliveries).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"orders_today":      totalOrders,
		"orders_by_status":  byStatus,
		"revenue_today":     revenue,
		"active_deliveries": activeDeliveries,
	})
}
