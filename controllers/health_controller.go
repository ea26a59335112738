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

// HealthController handles health record and threshold endpoints.
type HealthController struct {
	db *gorm.DB
}

// NewHealthController creates a new controller instance.
func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

type healthRecordRequest struct {
	RecordDate string   `json:"record_date"`
	Weight     *float64 `json:"weight"`
	Systolic   *int     `json:"systolic"`
	Diastolic  *int     `json:"diastolic"`
	Steps      *int     `json:"steps"`
}

func (r *healthRecordRequest) validate() (time.Time, error) {
	if r.Weight == nil && r.Systolic == nil && r.Diastolic == nil && r.Steps == nil {
		return time.Time{}, errors.New("at least one measurement is required")
	}
	if r.Weight != nil && (*r.Weight <= 0 || *r.Weight > 500) {
		return time.Time{}, errors.New("weight out of range")
	}
	if r.Systolic != nil && (*r.Systolic <= 0 || *r.Systolic > 300) {
		return time.Time{}, errors.New("systolic out of range")
	}
	if r.Diastolic != nil && (*r.Diastolic <= 0 || *r.Diastolic > 200) {
		return time.Time{}, errors.New("diastolic out of range")
	}
	if r.Steps != nil && (*r.Steps < 0 || *r.Steps > 200000) {
		return time.Time{}, errors.New("steps out of range")
	}

	if r.RecordDate == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.ParseInLocation("2006-01-02", r.RecordDate, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("record_date must be YYYY-MM-DD")
	}
	return date, nil
}

// CreateRecord stores a day's measurements.
func (h *HealthController) CreateRecord(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req healthRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	date, err := req.validate()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, err.Error())
		return
	}

	record := models.HealthRecord{
		UserID:     userID,
		RecordDate: date,
		Weight:     req.Weight,
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
		Steps:      req.Steps,
	}
	if err := h.db.Create(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to create health record")
		return
	}

	utils.Success(ctx, record)
}

// ListRecords returns paginated health records, newest first.
func (h *HealthController) ListRecords(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := h.db.Model(&models.HealthRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to count health records")
		return
	}

	var records []models.HealthRecord
	if err := h.db.Where("user_id = ?", userID).
		Order("record_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load health records")
		return
	}

	utils.Success(ctx, gin.H{
		"items": records,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpdateRecord modifies an existing record owned by the caller.
func (h *HealthController) UpdateRecord(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var record models.HealthRecord
	if err := h.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40470, "health record not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load health record")
		return
	}

	var req healthRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	if req.RecordDate == "" {
		req.RecordDate = record.RecordDate.Format("2006-01-02")
	}
	date, err := req.validate()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, err.Error())
		return
	}

	record.RecordDate = date
	record.Weight = req.Weight
	record.Systolic = req.Systolic
	record.Diastolic = req.Diastolic
	record.Steps = req.Steps

	if err := h.db.Save(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update health record")
		return
	}
	utils.Success(ctx, record)
}

// DeleteRecord removes a record owned by the caller.
func (h *HealthController) DeleteRecord(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := h.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).Delete(&models.HealthRecord{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete health record")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40470, "health record not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "record deleted"})
}

// GetThresholds returns the user's target ranges, creating defaults on first access.
func (h *HealthController) GetThresholds(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var thresholds models.HealthThreshold
	err := h.db.Where("user_id = ?", userID).First(&thresholds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		thresholds = models.HealthThreshold{
			UserID:       userID,
			SystolicMin:  90,
			SystolicMax:  140,
			DiastolicMin: 60,
			DiastolicMax: 90,
			StepsGoal:    10000,
		}
		if err := h.db.Create(&thresholds).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to create thresholds")
			return
		}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load thresholds")
		return
	}

	utils.Success(ctx, thresholds)
}

// UpdateThresholds replaces the user's target ranges.
func (h *HealthController) UpdateThresholds(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		WeightMin    *float64 `json:"weight_min"`
		WeightMax    *float64 `json:"weight_max"`
		SystolicMin  *int     `json:"systolic_min"`
		SystolicMax  *int     `json:"systolic_max"`
		DiastolicMin *int     `json:"diastolic_min"`
		DiastolicMax *int     `json:"diastolic_max"`
		StepsGoal    *int     `json:"steps_goal"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid request payload")
		return
	}
	if req.WeightMin != nil && req.WeightMax != nil && *req.WeightMin > *req.WeightMax {
		utils.Error(ctx, http.StatusBadRequest, 40073, "weight_min must not exceed weight_max")
		return
	}

	var thresholds models.HealthThreshold
	err := h.db.Where("user_id = ?", userID).First(&thresholds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		thresholds = models.HealthThreshold{UserID: userID, SystolicMin: 90, SystolicMax: 140, DiastolicMin: 60, DiastolicMax: 90, StepsGoal: 10000}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load thresholds")
		return
	}

	if req.WeightMin != nil {
		thresholds.WeightMin = req.WeightMin
	}
	if req.WeightMax != nil {
		thresholds.WeightMax = req.WeightMax
	}
	if req.SystolicMin != nil {
		thresholds.SystolicMin = *req.SystolicMin
	}
	if req.SystolicMax != nil {
		thresholds.SystolicMax = *req.SystolicMax
	}
	if req.DiastolicMin != nil {
		thresholds.DiastolicMin = *req.DiastolicMin
	}
	if req.DiastolicMax != nil {
		thresholds.DiastolicMax = *req.DiastolicMax
	}
	if req.StepsGoal != nil {
		thresholds.StepsGoal = *req.StepsGoal
	}

	if err := h.db.Save(&thresholds).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to save thresholds")
		return
	}
	utils.Success(ctx, thresholds)
}

// Stats returns averages for the requested period (week, month or year).
func (h *HealthController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	period := ctx.DefaultQuery("period", "week")
	now := time.Now()
	var from time.Time
	switch period {
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
	default:
		utils.Error(ctx, http.StatusBadRequest, 40074, "period must be week, month or year")
		return
	}

	var records []models.HealthRecord
	if err := h.db.Where("user_id = ? AND record_date >= ?", userID, from).
		Order("record_date ASC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to load health records")
		return
	}

	var weightSum, weightN float64
	var sysSum, sysN, diaSum, diaN, stepsSum, stepsN int
	for _, r := range records {
		if r.Weight != nil {
			weightSum += *r.Weight
			weightN++
		}
		if r.Systolic != nil {
			sysSum += *r.Systolic
			sysN++
		}
		if r.Diastolic != nil {
			diaSum += *r.Diastolic
			diaN++
		}
		if r.Steps != nil {
			stepsSum += *r.Steps
			stepsN++
		}
	}

	stats := gin.H{
		"period":       period,
		"record_count": len(records),
	}
	if weightN > 0 {
		stats["avg_weight"] = weightSum / weightN
	}
	if sysN > 0 {
		stats["avg_systolic"] = sysSum / sysN
	}
	if diaN > 0 {
		stats["avg_diastolic"] = diaSum / diaN
	}
	if stepsN > 0 {
		stats["avg_steps"] = stepsSum / stepsN
		stats["total_steps"] = stepsSum
	}

	utils.Success(ctx, stats)
}
