package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/piggy-wanger/keep-fit/models"
)

// gormAchievementStore is the production AchievementStore backed by the
// application database.
type gormAchievementStore struct {
	db *gorm.DB
}

// NewAchievementStore wraps db as an AchievementStore.
func NewAchievementStore(db *gorm.DB) AchievementStore {
	return &gormAchievementStore{db: db}
}

func (s *gormAchievementStore) UserLevel(userID uint) (int, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.Level, nil
}

func (s *gormAchievementStore) CountCheckIns(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *gormAchievementStore) CheckInDates(userID uint) ([]time.Time, error) {
	var dates []time.Time
	err := s.db.Model(&models.CheckIn{}).
		Where("user_id = ?", userID).
		Distinct("check_date").
		Order("check_date DESC").
		Pluck("check_date", &dates).Error
	return dates, err
}

func (s *gormAchievementStore) CountTrainingLogs(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.TrainingLog{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *gormAchievementStore) CountHealthRecords(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.HealthRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *gormAchievementStore) UnlockedAchievementIDs(userID uint) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	return ids, err
}

// Unlock inserts the unlock row and credits the reward in one transaction.
// The insert is guarded by the (user_id, achievement_id) unique index with
// ON CONFLICT DO NOTHING, so a concurrent duplicate resolves to RowsAffected
// 0 instead of an error and no reward is credited twice. The credit itself is
// an atomic SQL increment to avoid lost updates against concurrent check-in
// awards.
func (s *gormAchievementStore) Unlock(userID uint, achievementID string, expReward int, at time.Time) (bool, error) {
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&models.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			UnlockedAt:    at,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("exp", gorm.Expr("exp + ?", expReward)).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
