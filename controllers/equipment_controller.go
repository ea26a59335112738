package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/utils"
)

// EquipmentController exposes the equipment catalog and per-user gear lists.
type EquipmentController struct {
	db *gorm.DB
}

// NewEquipmentController creates a new controller instance.
func NewEquipmentController(db *gorm.DB) *EquipmentController {
	return &EquipmentController{db: db}
}

// List returns the full catalog, optionally filtered by category. The
// unfiltered catalog is cached; it only changes on deploy.
func (e *EquipmentController) List(ctx *gin.Context) {
	category := ctx.Query("category")

	if category == "" {
		if b, ok := utils.CacheGetBytes("cache:equipment:all"); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := e.db.Model(&models.Equipment{}).Order("category, id")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.Equipment
	if err := query.Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load equipment")
		return
	}

	if category == "" {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: items}
		utils.CacheSetJSON("cache:equipment:all", wrapper, 12*time.Hour)
	}
	utils.Success(ctx, items)
}

// Categories returns the distinct equipment categories.
func (e *EquipmentController) Categories(ctx *gin.Context) {
	var categories []string
	if err := e.db.Model(&models.Equipment{}).Distinct("category").
		Order("category").Pluck("category", &categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to load categories")
		return
	}
	utils.Success(ctx, categories)
}

// Get returns one catalog entry.
func (e *EquipmentController) Get(ctx *gin.Context) {
	var item models.Equipment
	if err := e.db.First(&item, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40490, "equipment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load equipment")
		return
	}
	utils.Success(ctx, item)
}

// ListMine returns the equipment the authenticated user owns.
func (e *EquipmentController) ListMine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var items []models.Equipment
	if err := e.db.Model(&models.Equipment{}).
		Joins("JOIN user_equipment ON user_equipment.equipment_id = equipment.id").
		Where("user_equipment.user_id = ?", userID).
		Order("user_equipment.acquired_at DESC").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to load user equipment")
		return
	}
	utils.Success(ctx, items)
}

// Add marks a catalog entry as owned. Duplicates are rejected with 409.
func (e *EquipmentController) Add(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	equipmentID := ctx.Param("id")
	var item models.Equipment
	if err := e.db.First(&item, "id = ?", equipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40490, "equipment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load equipment")
		return
	}

	var existing models.UserEquipment
	if err := e.db.Where("user_id = ? AND equipment_id = ?", userID, equipmentID).
		First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40990, "equipment already added")
		return
	}

	record := models.UserEquipment{
		UserID:      userID,
		EquipmentID: equipmentID,
		AcquiredAt:  time.Now(),
	}
	if err := e.db.Create(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to add equipment")
		return
	}

	utils.Success(ctx, gin.H{"message": "equipment added", "equipment": item})
}

// Remove drops a catalog entry from the user's gear list.
func (e *EquipmentController) Remove(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := e.db.Where("user_id = ? AND equipment_id = ?", userID, ctx.Param("id")).
		Delete(&models.UserEquipment{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to remove equipment")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40491, "equipment not in your list")
		return
	}

	utils.Success(ctx, gin.H{"message": "equipment removed"})
}
