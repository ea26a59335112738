package services

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/piggy-wanger/keep-fit/models"
)

// achievementCatalog is the process-wide immutable achievement reference data.
// Entries are seeded into the database once at startup so the API can join
// against user unlocks, but the engine always evaluates this in-memory copy.
var achievementCatalog = []models.Achievement{
	// 打卡
	{ID: "ach-first-checkin", Name: "初来乍到", Description: "完成第一次打卡", Icon: "🎯", Category: "打卡", ExpReward: 10, Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 1}},
	{ID: "ach-checkin-7", Name: "一周坚持", Description: "累计打卡7天", Icon: "📅", Category: "打卡", ExpReward: 30, Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 7}},
	{ID: "ach-checkin-30", Name: "月度达人", Description: "累计打卡30天", Icon: "🗓️", Category: "打卡", ExpReward: 100, Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 30}},
	{ID: "ach-checkin-100", Name: "百日传奇", Description: "累计打卡100天", Icon: "🏆", Category: "打卡", ExpReward: 300, Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 100}},
	{ID: "ach-streak-3", Name: "三连击", Description: "连续打卡3天", Icon: "🔥", Category: "打卡", ExpReward: 20, Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: 3}},
	{ID: "ach-streak-7", Name: "周周坚持", Description: "连续打卡7天", Icon: "💪", Category: "打卡", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: 7}},
	{ID: "ach-streak-30", Name: "月度连胜", Description: "连续打卡30天", Icon: "👑", Category: "打卡", ExpReward: 200, Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: 30}},

	// 训练
	{ID: "ach-first-training", Name: "初次训练", Description: "完成第一次训练记录", Icon: "🏋️", Category: "训练", ExpReward: 10, Criterion: models.Criterion{Kind: models.CriterionTraining, Threshold: 1}},
	{ID: "ach-training-10", Name: "健身新手", Description: "完成10次训练", Icon: "🎯", Category: "训练", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionTraining, Threshold: 10}},
	{ID: "ach-training-50", Name: "健身达人", Description: "完成50次训练", Icon: "💪", Category: "训练", ExpReward: 150, Criterion: models.Criterion{Kind: models.CriterionTraining, Threshold: 50}},
	{ID: "ach-training-100", Name: "健身大师", Description: "完成100次训练", Icon: "🏅", Category: "训练", ExpReward: 300, Criterion: models.Criterion{Kind: models.CriterionTraining, Threshold: 100}},

	// 健康
	{ID: "ach-first-health", Name: "健康追踪", Description: "记录第一条健康数据", Icon: "📊", Category: "健康", ExpReward: 10, Criterion: models.Criterion{Kind: models.CriterionHealth, Threshold: 1}},
	{ID: "ach-health-7", Name: "周记达人", Description: "连续7天记录健康数据", Icon: "📈", Category: "健康", ExpReward: 30, Criterion: models.Criterion{Kind: models.CriterionHealthStreak, Threshold: 7}},
	{ID: "ach-weight-goal", Name: "体重达标", Description: "体重达到目标范围", Icon: "⚖️", Category: "健康", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionWeightGoal, Threshold: 1}},
	{ID: "ach-steps-10k", Name: "万步达人", Description: "单日步数超过10000步", Icon: "👟", Category: "健康", ExpReward: 20, Criterion: models.Criterion{Kind: models.CriterionSteps10K, Threshold: 1}},

	// 等级
	{ID: "ach-level-5", Name: "初露锋芒", Description: "达到5级", Icon: "⭐", Category: "等级", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionLevel, Threshold: 5}},
	{ID: "ach-level-10", Name: "小有成就", Description: "达到10级", Icon: "🌟", Category: "等级", ExpReward: 100, Criterion: models.Criterion{Kind: models.CriterionLevel, Threshold: 10}},
	{ID: "ach-level-20", Name: "登峰造极", Description: "达到20级", Icon: "💫", Category: "等级", ExpReward: 300, Criterion: models.Criterion{Kind: models.CriterionLevel, Threshold: 20}},

	// 特殊
	{ID: "ach-early-bird", Name: "早起鸟儿", Description: "在早上6点前完成打卡", Icon: "🌅", Category: "特殊", ExpReward: 15, Criterion: models.Criterion{Kind: models.CriterionEarlyBird, Threshold: 1}},
	{ID: "ach-night-owl", Name: "夜猫子", Description: "在晚上11点后完成训练", Icon: "🦉", Category: "特殊", ExpReward: 15, Criterion: models.Criterion{Kind: models.CriterionNightOwl, Threshold: 1}},
}

// AchievementCatalog returns the catalog in evaluation order: category, then
// experience reward ascending. The slice is a copy; callers may not mutate
// the catalog.
func AchievementCatalog() []models.Achievement {
	out := make([]models.Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ExpReward < out[j].ExpReward
	})
	return out
}

// SeedAchievements inserts the catalog into the achievements table. Existing
// rows are left untouched so the seed is safe to run on every boot.
func SeedAchievements(db *gorm.DB) error {
	entries := AchievementCatalog()
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}
