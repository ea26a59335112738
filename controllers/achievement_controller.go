package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/models"
	"github.com/piggy-wanger/keep-fit/services"
	"github.com/piggy-wanger/keep-fit/utils"
)

// AchievementController exposes the achievement catalog, per-user unlock
// state and the evaluation endpoint.
type AchievementController struct {
	db     *gorm.DB
	engine *services.AchievementEngine
}

// NewAchievementController creates a new controller instance.
func NewAchievementController(db *gorm.DB) *AchievementController {
	return &AchievementController{
		db:     db,
		engine: services.NewAchievementEngine(services.NewAchievementStore(db)),
	}
}

// List returns the catalog with the caller's unlock state merged in.
func (a *AchievementController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var unlocks []models.UserAchievement
	if err := a.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to load unlocks")
		return
	}
	unlockedAt := make(map[string]models.UserAchievement, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u
	}

	catalog := services.AchievementCatalog()
	items := make([]gin.H, 0, len(catalog))
	for _, ach := range catalog {
		entry := gin.H{
			"id":          ach.ID,
			"name":        ach.Name,
			"description": ach.Description,
			"icon":        ach.Icon,
			"category":    ach.Category,
			"exp_reward":  ach.ExpReward,
			"unlocked":    false,
		}
		if u, ok := unlockedAt[ach.ID]; ok {
			entry["unlocked"] = true
			entry["unlocked_at"] = u.UnlockedAt
		}
		items = append(items, entry)
	}

	utils.Success(ctx, items)
}

// Categories returns the distinct achievement categories in catalog order.
func (a *AchievementController) Categories(ctx *gin.Context) {
	seen := map[string]bool{}
	categories := []string{}
	for _, ach := range services.AchievementCatalog() {
		if !seen[ach.Category] {
			seen[ach.Category] = true
			categories = append(categories, ach.Category)
		}
	}
	utils.Success(ctx, categories)
}

// Stats returns unlock totals for the caller.
func (a *AchievementController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var unlocks []models.UserAchievement
	if err := a.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to load unlocks")
		return
	}
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
	}

	catalog := services.AchievementCatalog()
	expEarned := 0
	byCategory := map[string]gin.H{}
	for _, ach := range catalog {
		c, ok := byCategory[ach.Category]
		if !ok {
			c = gin.H{"total": 0, "unlocked": 0}
			byCategory[ach.Category] = c
		}
		c["total"] = c["total"].(int) + 1
		if unlocked[ach.ID] {
			c["unlocked"] = c["unlocked"].(int) + 1
			expEarned += ach.ExpReward
		}
	}

	utils.Success(ctx, gin.H{
		"total":       len(catalog),
		"unlocked":    len(unlocks),
		"exp_earned":  expEarned,
		"by_category": byCategory,
	})
}

// Check runs the evaluation pass and returns any newly unlocked achievements.
func (a *AchievementController) Check(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	unlocked, err := a.engine.CheckAndUnlock(userID)
	if err != nil {
		if err == services.ErrUserNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50102, "achievement check failed")
		return
	}

	utils.Success(ctx, gin.H{
		"new_achievements": unlocked,
		"count":            len(unlocked),
	})
}
