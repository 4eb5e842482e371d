package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> daftar notifikasi store, unread dulu.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	storeID := storeIDFrom(c)

	var notifications []models.Notification
	err := nc.DB.Where("store_id = ?", storeID).
		Order("status desc, created_at desc").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notifications retrieved successfully", notifications)
}

// MarkNotificationRead menandai satu notifikasi sebagai sudah dibaca.
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	storeID := storeIDFrom(c)
	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	result := nc.DB.Model(&models.Notification{}).
		Where("store_id = ? AND id = ?", storeID, uint(notifID)).
		Update("status", "read")
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", nil)
}

// DeleteNotification menghapus notifikasi milik store.
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	storeID := storeIDFrom(c)
	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	result := nc.DB.Where("store_id = ?", storeID).Delete(&models.Notification{}, uint(notifID))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification deleted successfully", nil)
}
