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

type ItemController struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewItemController(db *gorm.DB, cacheStore cache.Store) *ItemController {
	return &ItemController{DB: db, Cache: cacheStore}
}

// GetAllItems membaca katalog item store termasuk modifier group-nya.
// Item jarang berubah, jadi TTL-nya panjang.
func (ic *ItemController) GetAllItems(c *gin.Context) {
	storeID := storeIDFrom(c)
	key := cache.ItemsKey(storeID)

	if cached, found, err := ic.Cache.Get(key); err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		var items []models.Item
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Items retrieved successfully", items)
			return
		}
	}

	var items []models.Item
	err := ic.DB.Preload("ModifierGroups.Modifiers").
		Where("store_id = ?", storeID).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if data, err := json.Marshal(items); err == nil {
		if err := ic.Cache.SetEx(key, string(data), cache.ItemsTTL); err != nil {
			utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Items retrieved successfully", items)
}

func (ic *ItemController) GetItemByID(c *gin.Context) {
	storeID := storeIDFrom(c)
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid item id"))
		return
	}

	var item models.Item
	err = ic.DB.Preload("ModifierGroups.Modifiers").
		Where("store_id = ?", storeID).
		First(&item, uint(itemID)).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("item not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item retrieved successfully", item)
}

func (ic *ItemController) CreateItem(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		MenuID      uint    `json:"menu_id" binding:"required"`
		CategoryID  uint    `json:"category_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		Description string  `json:"description"`
		ImageUrl    *string `json:"image_url"`
		Available   *bool   `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Menu dan kategori harus milik store yang sama
	var menu models.Menu
	if err := ic.DB.Where("store_id = ?", storeID).First(&menu, req.MenuID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("menu not found for this store"))
		return
	}
	var category models.MenuCategory
	if err := ic.DB.Where("store_id = ?", storeID).First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category not found for this store"))
		return
	}

	item := models.Item{
		StoreID:     storeID,
		MenuID:      req.MenuID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageUrl:    req.ImageUrl,
		Available:   true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.invalidate(storeID)
	utils.RespondJSON(c, http.StatusCreated, "Item created successfully", item)
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	storeID := storeIDFrom(c)
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid item id"))
		return
	}

	var item models.Item
	if err := ic.DB.Where("store_id = ?", storeID).First(&item, uint(itemID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("item not found"))
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
		ImageUrl    *string  `json:"image_url"`
		Available   *bool    `json:"available"`
		CategoryID  *uint    `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ImageUrl != nil {
		item.ImageUrl = req.ImageUrl
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	if req.CategoryID != nil {
		var category models.MenuCategory
		if err := ic.DB.Where("store_id = ?", storeID).First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("category not found for this store"))
			return
		}
		item.CategoryID = *req.CategoryID
	}

	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Item updated successfully", item)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	storeID := storeIDFrom(c)
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid item id"))
		return
	}

	result := ic.DB.Where("store_id = ?", storeID).Delete(&models.Item{}, uint(itemID))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("item not found"))
		return
	}

	ic.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Item deleted successfully", nil)
}

// AssignModifierGroups mengganti daftar modifier group sebuah item.
func (ic *ItemController) AssignModifierGroups(c *gin.Context) {
	storeID := storeIDFrom(c)
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid item id"))
		return
	}

	var req struct {
		GroupIDs []uint `json:"group_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.Item
	if err := ic.DB.Where("store_id = ?", storeID).First(&item, uint(itemID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("item not found"))
		return
	}

	var groups []models.ModifierGroup
	if len(req.GroupIDs) > 0 {
		if err := ic.DB.Where("store_id = ? AND id IN ?", storeID, req.GroupIDs).Find(&groups).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if len(groups) != len(req.GroupIDs) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("one or more modifier groups not found for this store"))
			return
		}
	}

	if err := ic.DB.Model(&item).Association("ModifierGroups").Replace(groups); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Modifier groups assigned", gin.H{
		"item_id":   item.ID,
		"group_ids": req.GroupIDs,
	})
}

func (ic *ItemController) invalidate(storeID uint) {
	if err := ic.Cache.Delete(cache.ItemsKey(storeID)); err != nil {
		utils.ErrorLogger.Printf("cache delete failed for %s: %v", cache.ItemsKey(storeID), err)
	}
}
