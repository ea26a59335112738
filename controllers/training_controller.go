package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/services"
	"github.com/piggy-wanger/keep-fit/utils"
)

// TrainingController handles training plan and log endpoints.
type TrainingController struct {
	db     *gorm.DB
	engine *services.AchievementEngine
}

// NewTrainingController creates a new controller instance.
func NewTrainingController(db *gorm.DB) *TrainingController {
	return &TrainingController{
		db:     db,
		engine: services.NewAchievementEngine(services.NewAchievementStore(db)),
	}
}

type planItemRequest struct {
	EquipmentID  *string  `json:"equipment_id"`
	ExerciseName string   `json:"exercise_name" binding:"required"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	Duration     *int     `json:"duration"`
	DayOfWeek    *int     `json:"day_of_week"`
	SortOrder    int      `json:"sort_order"`
}

type planRequest struct {
	Name        string            `json:"name" binding:"required,max=128"`
	Description string            `json:"description"`
	StartDate   *string           `json:"start_date"`
	EndDate     *string           `json:"end_date"`
	Items       []planItemRequest `json:"items"`
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", *s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreatePlan stores a plan with its items. The new plan becomes the active
// one; previous plans are deactivated.
func (t *TrainingController) CreatePlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req planRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "end_date must be YYYY-MM-DD")
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		utils.Error(ctx, http.StatusBadRequest, 40082, "end_date before start_date")
		return
	}

	plan := models.TrainingPlan{
		UserID:      userID,
		Name:        utils.Sanitize(req.Name),
		Description: utils.Sanitize(req.Description),
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
	}
	for _, item := range req.Items {
		plan.Items = append(plan.Items, models.PlanItem{
			EquipmentID:  item.EquipmentID,
			ExerciseName: utils.Sanitize(item.ExerciseName),
			Sets:         item.Sets,
			Reps:         item.Reps,
			Weight:       item.Weight,
			Duration:     item.Duration,
			DayOfWeek:    item.DayOfWeek,
			SortOrder:    item.SortOrder,
		})
	}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TrainingPlan{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&plan).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to create plan")
		return
	}

	utils.Success(ctx, plan)
}

// ListPlans returns the user's plans with items, active plan first.
func (t *TrainingController) ListPlans(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var plans []models.TrainingPlan
	if err := t.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Where("user_id = ?", userID).
		Order("is_active DESC, created_at DESC").Find(&plans).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load plans")
		return
	}

	utils.Success(ctx, plans)
}

// GetPlan returns one plan with items.
func (t *TrainingController) GetPlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var plan models.TrainingPlan
	if err := t.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "plan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load plan")
		return
	}

	utils.Success(ctx, plan)
}

// UpdatePlan replaces plan fields and items.
func (t *TrainingController) UpdatePlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var plan models.TrainingPlan
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "plan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to load plan")
		return
	}

	var req planRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "end_date must be YYYY-MM-DD")
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		utils.Error(ctx, http.StatusBadRequest, 40082, "end_date before start_date")
		return
	}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		plan.Name = utils.Sanitize(req.Name)
		plan.Description = utils.Sanitize(req.Description)
		plan.StartDate = start
		plan.EndDate = end
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PlanItem{}).Error; err != nil {
			return err
		}
		for _, item := range req.Items {
			newItem := models.PlanItem{
				PlanID:       plan.ID,
				EquipmentID:  item.EquipmentID,
				ExerciseName: utils.Sanitize(item.ExerciseName),
				Sets:         item.Sets,
				Reps:         item.Reps,
				Weight:       item.Weight,
				Duration:     item.Duration,
				DayOfWeek:    item.DayOfWeek,
				SortOrder:    item.SortOrder,
			}
			if err := tx.Create(&newItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to update plan")
		return
	}

	t.GetPlan(ctx)
}

// ActivatePlan marks one plan active and deactivates the others.
func (t *TrainingController) ActivatePlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var plan models.TrainingPlan
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "plan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load plan")
		return
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TrainingPlan{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&plan).Update("is_active", true).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to activate plan")
		return
	}

	utils.Success(ctx, gin.H{"message": "plan activated", "plan_id": plan.ID})
}

// DeletePlan removes a plan and its items.
func (t *TrainingController) DeletePlan(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var plan models.TrainingPlan
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "plan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to load plan")
		return
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PlanItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&plan).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to delete plan")
		return
	}

	utils.Success(ctx, gin.H{"message": "plan deleted"})
}

type logItemRequest struct {
	EquipmentID  *string  `json:"equipment_id"`
	ExerciseName string   `json:"exercise_name" binding:"required"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	Duration     *int     `json:"duration"`
}

// CreateLog records a completed workout session and evaluates achievements.
func (t *TrainingController) CreateLog(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		PlanID   *uint            `json:"plan_id"`
		LogDate  string           `json:"log_date"`
		Duration *int             `json:"duration"`
		Notes    string           `json:"notes"`
		Items    []logItemRequest `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid request payload")
		return
	}

	logDate := time.Now()
	if req.LogDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.LogDate, time.UTC)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40081, "log_date must be YYYY-MM-DD")
			return
		}
		logDate = parsed
	}

	if req.PlanID != nil {
		var plan models.TrainingPlan
		if err := t.db.Where("id = ? AND user_id = ?", *req.PlanID, userID).First(&plan).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40084, "plan_id does not reference your plan")
			return
		}
	}

	log := models.TrainingLog{
		UserID:   userID,
		PlanID:   req.PlanID,
		LogDate:  logDate,
		Duration: req.Duration,
		Notes:    utils.Sanitize(req.Notes),
	}
	for _, item := range req.Items {
		log.Items = append(log.Items, models.LogItem{
			EquipmentID:  item.EquipmentID,
			ExerciseName: utils.Sanitize(item.ExerciseName),
			Sets:         item.Sets,
			Reps:         item.Reps,
			Weight:       item.Weight,
			Duration:     item.Duration,
		})
	}

	if err := t.db.Create(&log).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to create training log")
		return
	}

	unlocked, aerr := t.engine.CheckAndUnlock(userID)
	if aerr != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("achievement check failed user=%d err=%v", userID, aerr)
	}

	utils.Success(ctx, gin.H{
		"log":              log,
		"new_achievements": unlocked,
	})
}

// ListLogs returns the paginated training history with items, newest first.
func (t *TrainingController) ListLogs(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := t.db.Model(&models.TrainingLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to count training logs")
		return
	}

	var logs []models.TrainingLog
	if err := t.db.Preload("Items").Where("user_id = ?", userID).
		Order("log_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to load training logs")
		return
	}

	utils.Success(ctx, gin.H{
		"items": logs,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// DeleteLog removes a training log and its items.
func (t *TrainingController) DeleteLog(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var log models.TrainingLog
	if err := t.db.Where("id = ? AND user_id = ?", ctx.Param("id"), userID).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40481, "training log not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to load training log")
		return
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("log_id = ?", log.ID).Delete(&models.LogItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&log).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to delete training log")
		return
	}

	utils.Success(ctx, gin.H{"message": "training log deleted"})
}

// Stats returns totals and recent activity for the user's training history.
func (t *TrainingController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var total int64
	if err := t.db.Model(&models.TrainingLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50088, "failed to count training logs")
		return
	}

	var totalDuration int64
	if err := t.db.Model(&models.TrainingLog{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration),0)").Scan(&totalDuration).Error; err != nil {
		totalDuration = 0
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	var weekCount int64
	if err := t.db.Model(&models.TrainingLog{}).
		Where("user_id = ? AND log_date >= ?", userID, weekAgo).Count(&weekCount).Error; err != nil {
		weekCount = 0
	}

	var recent []time.Time
	if err := t.db.Model(&models.TrainingLog{}).Where("user_id = ?", userID).
		Order("log_date DESC").Limit(10).Pluck("log_date", &recent).Error; err != nil {
		recent = nil
	}

	utils.Success(ctx, gin.H{
		"total_sessions":   total,
		"total_duration":   totalDuration,
		"week_sessions":    weekCount,
		"recent_log_dates": recent,
	})
}
