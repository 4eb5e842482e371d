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

type ModifierController struct {
	DB    *gorm.DB
	Cache cache.Store
}

func NewModifierController(db *gorm.DB, cacheStore cache.Store) *ModifierController {
	return &ModifierController{DB: db, Cache: cacheStore}
}

// GetAllModifierGroups membaca semua modifier group store beserta isinya.
func (mc *ModifierController) GetAllModifierGroups(c *gin.Context) {
	storeID := storeIDFrom(c)
	key := cache.ModifierGroupsKey(storeID)

	if cached, found, err := mc.Cache.Get(key); err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		var groups []models.ModifierGroup
		if err := json.Unmarshal([]byte(cached), &groups); err == nil {
			utils.RespondJSON(c, http.StatusOK, "Modifier groups retrieved successfully", groups)
			return
		}
	}

	var groups []models.ModifierGroup
	err := mc.DB.Preload("Modifiers").
		Where("store_id = ?", storeID).
		Order("name asc").
		Find(&groups).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if data, err := json.Marshal(groups); err == nil {
		if err := mc.Cache.SetEx(key, string(data), cache.ModifierGroupsTTL); err != nil {
			utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Modifier groups retrieved successfully", groups)
}

func (mc *ModifierController) CreateModifierGroup(c *gin.Context) {
	storeID := storeIDFrom(c)

	var req struct {
		Name      string `json:"name" binding:"required"`
		MinSelect int    `json:"min_select"`
		MaxSelect int    `json:"max_select"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.MaxSelect > 0 && req.MinSelect > req.MaxSelect {
		utils.RespondError(c, http.StatusBadRequest, errors.New("min_select cannot exceed max_select"))
		return
	}

	group := models.ModifierGroup{
		StoreID:   storeID,
		Name:      req.Name,
		MinSelect: req.MinSelect,
		MaxSelect: req.MaxSelect,
	}
	if group.MaxSelect == 0 {
		group.MaxSelect = 1
	}

	if err := mc.DB.Create(&group).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusCreated, "Modifier group created successfully", group)
}

func (mc *ModifierController) UpdateModifierGroup(c *gin.Context) {
	storeID := storeIDFrom(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid group id"))
		return
	}

	var group models.ModifierGroup
	if err := mc.DB.Where("store_id = ?", storeID).First(&group, uint(groupID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("modifier group not found"))
		return
	}

	var req struct {
		Name      *string `json:"name"`
		MinSelect *int    `json:"min_select"`
		MaxSelect *int    `json:"max_select"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.MinSelect != nil {
		group.MinSelect = *req.MinSelect
	}
	if req.MaxSelect != nil {
		group.MaxSelect = *req.MaxSelect
	}
	if group.MaxSelect > 0 && group.MinSelect > group.MaxSelect {
		utils.RespondError(c, http.StatusBadRequest, errors.New("min_select cannot exceed max_select"))
		return
	}

	if err := mc.DB.Save(&group).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Modifier group updated successfully", group)
}

func (mc *ModifierController) DeleteModifierGroup(c *gin.Context) {
	storeID := storeIDFrom(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid group id"))
		return
	}

	result := mc.DB.Where("store_id = ?", storeID).Delete(&models.ModifierGroup{}, uint(groupID))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("modifier group not found"))
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Modifier group deleted successfully", nil)
}

// CreateModifier menambahkan satu pilihan ke dalam group.
func (mc *ModifierController) CreateModifier(c *gin.Context) {
	storeID := storeIDFrom(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid group id"))
		return
	}

	var group models.ModifierGroup
	if err := mc.DB.Where("store_id = ?", storeID).First(&group, uint(groupID)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("modifier group not found"))
		return
	}

	var req struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	modifier := models.Modifier{
		GroupID: group.ID,
		Name:    req.Name,
		Price:   req.Price,
	}
	if err := mc.DB.Create(&modifier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusCreated, "Modifier created successfully", modifier)
}

func (mc *ModifierController) DeleteModifier(c *gin.Context) {
	storeID := storeIDFrom(c)
	modifierID, err := strconv.ParseUint(c.Param("modifier_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid modifier id"))
		return
	}

	// Hapus hanya kalau group-nya milik store ini
	result := mc.DB.Where("id = ? AND group_id IN (?)",
		uint(modifierID),
		mc.DB.Model(&models.ModifierGroup{}).Select("id").Where("store_id = ?", storeID),
	).Delete(&models.Modifier{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("modifier not found"))
		return
	}

	mc.invalidate(storeID)
	utils.RespondJSON(c, http.StatusOK, "Modifier deleted successfully", nil)
}

func (mc *ModifierController) invalidate(storeID uint) {
	for _, key := range []string{cache.ModifierGroupsKey(storeID), cache.ModifiersKey(storeID), cache.ItemsKey(storeID)} {
		if err := mc.Cache.Delete(key); err != nil {
			utils.ErrorLogger.Printf("cache delete failed for %s: %v", key, err)
		}
	}
}
