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

type MenuCategoryController struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewMenuCategoryController(db *gorm.DB, cacheStore cache.Store) *MenuCategoryController {
	return &MenuCategoryController{DB: db, Cache: cacheStore}
}

func (cc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	storeID := storeIDFrom(c)
	key := cache.CategoriesKey(storeID)

	if cached, found, err := cc.Cache.Get(key); err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		var categories []models.MenuCategory
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Categories retrieved successfully", categories)
			return
		}
	}

	var categories []models.MenuCategory
	if err := cc.DB.Where("store_id = ?", storeID).Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if data, err := json.Marshal(categories); err == nil {
		if err := cc.Cache.SetEx(key, string(data), cache.CategoriesTTL); err != nil {
			utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (cc *MenuCategoryController) CreateCategory(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.MenuCategory{StoreID: storeID, Name: req.Name, SortOrder: req.SortOrder}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

func (cc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	storeID := storeIDFrom(c)
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category id"))
		return
	}

	var category models.MenuCategory
	if err := cc.DB.Where("store_id = ?", storeID).First(&category, uint(categoryID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	var req struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", category)
}

func (cc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	storeID := storeIDFrom(c)
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category id"))
		return
	}

	// Kategori yang masih dipakai item tidak boleh dihapus
	var inUse int64
	if err := cc.DB.Model(&models.Item{}).Where("category_id = ?", uint(categoryID)).Count(&inUse).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if inUse > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has items"))
		return
	}

	result := cc.DB.Where("store_id = ?", storeID).Delete(&models.MenuCategory{}, uint(categoryID))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	cc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", nil)
}

func (cc *MenuCategoryController) invalidate(storeID uint) {
	for _, key := range []string{cache.CategoriesKey(storeID), cache.ItemsKey(storeID)} {
		if err := cc.Cache.Delete(key); err != nil {
			utils.ErrorLogger.Printf("cache delete failed for %s: %v", key, err)
		}
	}
}
