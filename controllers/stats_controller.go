package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/utils"
)

// StatsController provides public aggregate statistics for the landing page.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns site-wide counters.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var checkInCount int64
	var trainingCount int64
	var todayCheckIns int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.CheckIn{}).Count(&checkInCount).Error; err != nil {
		checkInCount = 0
	}

	if err := s.db.Model(&models.TrainingLog{}).Count(&trainingCount).Error; err != nil {
		trainingCount = 0
	}

	// Same day derivation as the check-in write path: local calendar day
	// rendered as a UTC date.
	today := dayOf(time.Now())
	if err := s.db.Model(&models.CheckIn{}).
		Where("check_date = ?", today).
		Count(&todayCheckIns).Error; err != nil {
		todayCheckIns = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":          userCount,
		"checkin_count":       checkInCount,
		"training_log_count":  trainingCount,
		"today_checkin_count": todayCheckIns,
	})
}
