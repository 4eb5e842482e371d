package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

type MenuController struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewMenuController(db *gorm.DB, cacheStore cache.Store) *MenuController {
	return &MenuController{DB: db, Cache: cacheStore}
}

// GetAllMenus membaca daftar menu store, cache dulu baru DB.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	storeID := storeIDFrom(c)
	key := cache.MenusKey(storeID)

	if cached, found, err := mc.Cache.Get(key); err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		var menus []models.Menu
		if err := json.Unmarshal([]byte(cached), &menus); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Menus retrieved successfully", menus)
			return
		}
	}

	var menus []models.Menu
	if err := mc.DB.Where("store_id = ?", storeID).Order("name asc").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if data, err := json.Marshal(menus); err == nil {
		if err := mc.Cache.SetEx(key, string(data), cache.MenusTTL); err != nil {
			utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Menus retrieved successfully", menus)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		Name   string `json:"name" binding:"required"`
		Active *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{StoreID: storeID, Name: req.Name, Active: true}
	if req.Active != nil {
		menu.Active = *req.Active
	}

	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusCreated, "Menu created successfully", menu)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	storeID := storeIDFrom(c)
	menuID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu id"))
		return
	}

	var menu models.Menu
	if err := mc.DB.Where("store_id = ?", storeID).First(&menu, uint(menuID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Active *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Active != nil {
		menu.Active = *req.Active
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", menu)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	storeID := storeIDFrom(c)
	menuID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu id"))
		return
	}

	result := mc.DB.Where("store_id = ?", storeID).Delete(&models.Menu{}, uint(menuID))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Menu deleted successfully", nil)
}

// invalidate menghapus cache menu dan item; item menyimpan referensi menu.
func (mc *MenuController) invalidate(storeID uint) {
	for _, key := range []string{cache.MenusKey(storeID), cache.ItemsKey(storeID)} {
		if err := mc.Cache.Delete(key); err != nil {
			utils.ErrorLogger.Printf("cache delete failed for %s: %v", key, err)
		}
	}
}
