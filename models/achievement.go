package models

import "time"

// CriterionKind tags the aggregate an achievement criterion is compared against.
type CriterionKind string

const (
	CriterionCheckIn  CriterionKind = "checkin"
	CriterionStreak   CriterionKind = "streak"
	CriterionTraining CriterionKind = "training"
	CriterionLevel    CriterionKind = "level"
	CriterionHealth   CriterionKind = "health"

	// The kinds below appear in the catalog but have no evaluator wired in the
	// engine yet. Their semantics need aggregates the engine does not compute
	// (per-day health streaks, threshold comparisons, time-of-day of the
	// triggering action), so they never unlock until such evaluators exist.
	CriterionHealthStreak CriterionKind = "health_streak"
	CriterionWeightGoal   CriterionKind = "weight_goal"
	CriterionSteps10K     CriterionKind = "steps_10k"
	CriterionEarlyBird    CriterionKind = "early_bird"
	CriterionNightOwl     CriterionKind = "night_owl"
)

// Criterion is the unlock predicate of an achievement: the named aggregate
// must reach Threshold.
type Criterion struct {
	Kind      CriterionKind `gorm:"size:32" json:"kind"`
	Threshold int           `json:"threshold"`
}

// Achievement is one catalog entry. The catalog is immutable reference data
// seeded once at startup; user actions never mutate it.
type Achievement struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	Category    string    `gorm:"size:32;index" json:"category"`
	ExpReward   int       `gorm:"default:0" json:"exp_reward"`
	Criterion   Criterion `gorm:"embedded;embeddedPrefix:criteria_" json:"criteria"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserAchievement records a one-time unlock. The composite unique index makes
// unlocking idempotent: a second insert for the same pair is a benign no-op.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:uk_user_achievements" json:"user_id"`
	AchievementID string    `gorm:"size:64;not null;uniqueIndex:uk_user_achievements" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
