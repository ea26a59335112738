package services

import (
	"errors"
	"time"

	"github.com/piggy-wanger/keep-fit/models"
)

// ErrUserNotFound is returned when an engine call references a missing user.
var ErrUserNotFound = errors.New("user not found")

// AchievementStore is the persistence surface the engine needs. The
// production implementation is GORM-backed; tests substitute an in-memory
// fake.
type AchievementStore interface {
	// UserLevel returns the user's current level, or ErrUserNotFound.
	UserLevel(userID uint) (int, error)
	// CountCheckIns returns the user's all-time check-in count.
	CountCheckIns(userID uint) (int64, error)
	// CheckInDates returns the user's distinct check-in calendar dates.
	CheckInDates(userID uint) ([]time.Time, error)
	// CountTrainingLogs returns the user's all-time training-log count.
	CountTrainingLogs(userID uint) (int64, error)
	// CountHealthRecords returns the user's all-time health-record count.
	CountHealthRecords(userID uint) (int64, error)
	// UnlockedAchievementIDs lists achievement IDs already unlocked.
	UnlockedAchievementIDs(userID uint) ([]string, error)
	// Unlock atomically records an unlock and credits the experience reward.
	// Returns false when the (user, achievement) pair already exists; that is
	// a benign outcome, not an error. On true the reward has been credited in
	// the same transaction as the unlock row.
	Unlock(userID uint, achievementID string, expReward int, at time.Time) (bool, error)
}

// AchievementEngine evaluates the achievement catalog against a user's
// activity aggregates and unlocks newly satisfied entries exactly once.
type AchievementEngine struct {
	store   AchievementStore
	catalog []models.Achievement
	now     func() time.Time
}

// NewAchievementEngine builds an engine over the full catalog.
func NewAchievementEngine(store AchievementStore) *AchievementEngine {
	return &AchievementEngine{
		store:   store,
		catalog: AchievementCatalog(),
		now:     time.Now,
	}
}

// aggregates are the per-user activity counters criteria compare against,
// computed fresh on every CheckAndUnlock call.
type aggregates struct {
	checkIns      int64
	currentStreak int
	trainingLogs  int64
	healthRecords int64
	level         int
}

// CheckAndUnlock evaluates every catalog entry not yet unlocked for the user
// and unlocks each whose criterion is satisfied, crediting its experience
// reward. Returns the newly unlocked achievements in catalog order.
//
// The call is idempotent: already-unlocked entries are skipped up front, and
// a concurrent duplicate insert is absorbed by the store's uniqueness
// constraint. A storage error aborts the pass but leaves prior unlocks
// committed; retrying the whole call is safe.
func (e *AchievementEngine) CheckAndUnlock(userID uint) ([]models.Achievement, error) {
	agg, err := e.collect(userID)
	if err != nil {
		return nil, err
	}

	unlockedIDs, err := e.store.UnlockedAchievementIDs(userID)
	if err != nil {
		return nil, err
	}
	already := make(map[string]struct{}, len(unlockedIDs))
	for _, id := range unlockedIDs {
		already[id] = struct{}{}
	}

	unlocked := make([]models.Achievement, 0)
	for _, ach := range e.catalog {
		if _, ok := already[ach.ID]; ok {
			continue
		}
		if !criterionMet(ach.Criterion, agg) {
			continue
		}
		created, err := e.store.Unlock(userID, ach.ID, ach.ExpReward, e.now())
		if err != nil {
			return unlocked, err
		}
		if !created {
			// Lost the race against a concurrent evaluation; the other
			// writer credited the reward.
			continue
		}
		unlocked = append(unlocked, ach)
	}
	return unlocked, nil
}

func (e *AchievementEngine) collect(userID uint) (aggregates, error) {
	var agg aggregates
	var err error

	if agg.level, err = e.store.UserLevel(userID); err != nil {
		return agg, err
	}
	if agg.checkIns, err = e.store.CountCheckIns(userID); err != nil {
		return agg, err
	}
	dates, err := e.store.CheckInDates(userID)
	if err != nil {
		return agg, err
	}
	agg.currentStreak, _ = Streaks(dates, e.now())
	if agg.trainingLogs, err = e.store.CountTrainingLogs(userID); err != nil {
		return agg, err
	}
	if agg.healthRecords, err = e.store.CountHealthRecords(userID); err != nil {
		return agg, err
	}
	return agg, nil
}

// criterionMet compares one criterion against the aggregates. Kinds without a
// wired aggregate (health_streak, weight_goal, steps_10k, early_bird,
// night_owl) never match; see the kind declarations in models.
func criterionMet(c models.Criterion, agg aggregates) bool {
	switch c.Kind {
	case models.CriterionCheckIn:
		return agg.checkIns >= int64(c.Threshold)
	case models.CriterionStreak:
		return agg.currentStreak >= c.Threshold
	case models.CriterionTraining:
		return agg.trainingLogs >= int64(c.Threshold)
	case models.CriterionLevel:
		return agg.level >= c.Threshold
	case models.CriterionHealth:
		return agg.healthRecords >= int64(c.Threshold)
	default:
		return false
	}
}
