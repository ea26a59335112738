package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/services"
	"github.com/piggy-wanger/keep-fit/utils"
)

// CheckInController handles daily habit check-in endpoints.
type CheckInController struct {
	db     *gorm.DB
	engine *services.AchievementEngine
}

var errAlreadyCheckedIn = errors.New("already checked in today for this type")

func isCheckInConflict(err error) bool {
	return errors.Is(err, errAlreadyCheckedIn) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB) *CheckInController {
	return &CheckInController{
		db:     db,
		engine: services.NewAchievementEngine(services.NewAchievementStore(db)),
	}
}

// ListTypes returns the fixed check-in type registry.
func (c *CheckInController) ListTypes(ctx *gin.Context) {
	items := make([]gin.H, 0, len(services.CheckInTypes))
	for key, t := range services.CheckInTypes {
		items = append(items, gin.H{
			"type":       key,
			"name":       t.Name,
			"icon":       t.Icon,
			"exp_reward": t.ExpReward,
		})
	}
	utils.Success(ctx, items)
}

// Create records a check-in for today, awards experience and evaluates
// achievements. A duplicate (same user, day and type) is rejected with 409.
func (c *CheckInController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		CheckType string `json:"check_type" binding:"required"`
		Notes     string `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if !services.ValidCheckInType(req.CheckType) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "unknown check-in type")
		return
	}

	today := dayOf(time.Now())
	reward := services.CheckInTypes[req.CheckType].ExpReward

	var record models.CheckIn
	var leveledUp bool
	var newLevel int

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CheckIn
		if err := tx.Where("user_id = ? AND check_date = ? AND check_type = ?",
			userID, today, req.CheckType).First(&existing).Error; err == nil {
			return errAlreadyCheckedIn
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		record = models.CheckIn{
			UserID:    userID,
			CheckDate: today,
			CheckType: req.CheckType,
			Notes:     utils.Sanitize(req.Notes),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		user.Level, user.Exp, leveledUp = services.ApplyExperience(user.Level, user.Exp, reward)
		newLevel = user.Level
		return tx.Save(&user).Error
	})

	if err != nil {
		// A concurrent duplicate slips past the pre-check and trips the
		// unique index instead; both are the same conflict.
		if isCheckInConflict(err) {
			utils.Error(ctx, http.StatusConflict, 40930, errAlreadyCheckedIn.Error())
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to record check-in")
		return
	}

	// Unlock failures must not fail the check-in itself.
	unlocked, aerr := c.engine.CheckAndUnlock(userID)
	if aerr != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("achievement check failed user=%d err=%v", userID, aerr)
	}

	utils.Success(ctx, gin.H{
		"checkin":          record,
		"exp_gained":       reward,
		"leveled_up":       leveledUp,
		"level":            newLevel,
		"new_achievements": unlocked,
	})
}

// Cancel removes today's check-in of the given type and refunds its
// experience. Experience never goes below zero; levels are not revoked.
func (c *CheckInController) Cancel(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	checkType := ctx.Param("type")
	if !services.ValidCheckInType(checkType) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "unknown check-in type")
		return
	}

	today := dayOf(time.Now())
	reward := services.CheckInTypes[checkType].ExpReward

	err := c.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND check_date = ? AND check_type = ?",
			userID, today, checkType).Delete(&models.CheckIn{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}
		user.Exp = services.DeductExperience(user.Exp, reward)
		return tx.Save(&user).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "no check-in of this type today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to cancel check-in")
		return
	}

	utils.Success(ctx, gin.H{
		"message":      "check-in cancelled",
		"exp_refunded": reward,
	})
}

// Today returns today's check-ins together with the types not yet done.
func (c *CheckInController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	today := dayOf(time.Now())

	var records []models.CheckIn
	if err := c.db.Where("user_id = ? AND check_date = ?", userID, today).
		Order("created_at ASC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load check-ins")
		return
	}

	done := make(map[string]bool, len(records))
	for _, r := range records {
		done[r.CheckType] = true
	}
	remaining := make([]string, 0)
	for key := range services.CheckInTypes {
		if !done[key] {
			remaining = append(remaining, key)
		}
	}

	utils.Success(ctx, gin.H{
		"checkins":  records,
		"remaining": remaining,
	})
}

// Records returns the paginated check-in history, optionally filtered by type.
func (c *CheckInController) Records(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if t := ctx.Query("type"); t != "" {
		if !services.ValidCheckInType(t) {
			utils.Error(ctx, http.StatusBadRequest, 40061, "unknown check-in type")
			return
		}
		query = query.Where("check_type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to count check-ins")
		return
	}

	var records []models.CheckIn
	if err := query.Order("check_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load check-ins")
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

// Calendar returns the days of a month that have at least one check-in.
func (c *CheckInController) Calendar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v, err := strconv.Atoi(ctx.Query("year")); err == nil && v >= 2000 && v <= 2100 {
		year = v
	}
	if v, err := strconv.Atoi(ctx.Query("month")); err == nil && v >= 1 && v <= 12 {
		month = v
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var records []models.CheckIn
	if err := c.db.Where("user_id = ? AND check_date >= ? AND check_date < ?",
		userID, monthStart, monthEnd).Order("check_date ASC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load calendar")
		return
	}

	byDay := map[string][]string{}
	for _, r := range records {
		key := r.CheckDate.Format("2006-01-02")
		byDay[key] = append(byDay[key], r.CheckType)
	}

	utils.Success(ctx, gin.H{
		"year":  year,
		"month": month,
		"days":  byDay,
	})
}

// distinctDaysSince counts the distinct check-in days on or after since.
func (c *CheckInController) distinctDaysSince(userID uint, since time.Time) int64 {
	var count int64
	if err := c.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND check_date >= ?", userID, since).
		Distinct("check_date").Count(&count).Error; err != nil {
		return 0
	}
	return count
}

// Stats returns streaks, per-type totals and the distinct check-in day
// counts for the current week and month.
func (c *CheckInController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var dates []time.Time
	if err := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).
		Distinct("check_date").Order("check_date DESC").Pluck("check_date", &dates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load check-in dates")
		return
	}

	current, longest := services.Streaks(dates, time.Now())

	type typeCount struct {
		CheckType string `json:"check_type"`
		Count     int64  `json:"count"`
	}
	var byType []typeCount
	if err := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).
		Select("check_type, COUNT(*) AS count").Group("check_type").Scan(&byType).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to aggregate check-ins")
		return
	}

	var total int64
	if err := c.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		total = 0
	}

	today := dayOf(time.Now())
	weekDays := c.distinctDaysSince(userID, weekStartOf(today))
	monthDays := c.distinctDaysSince(userID, monthStartOf(today))

	utils.Success(ctx, gin.H{
		"current_streak": current,
		"longest_streak": longest,
		"total_checkins": total,
		"total_days":     len(dates),
		"week_days":      weekDays,
		"month_days":     monthDays,
		"by_type":        byType,
	})
}
