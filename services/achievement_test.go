package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/piggy-wanger/keep-fit/models"
)

// fakeStore is an in-memory AchievementStore. Unlock enforces the
// (user, achievement) uniqueness the way the database constraint does, so the
// engine's idempotence and race behavior can be exercised without a database.
type fakeStore struct {
	mu sync.Mutex

	users         map[uint]int // userID -> level
	checkInDates  map[uint][]time.Time
	trainingLogs  map[uint]int64
	healthRecords map[uint]int64
	unlocked      map[uint]map[string]struct{}
	exp           map[uint]int

	unlockErrAfter int // fail the Nth unlock when > 0
	unlockCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[uint]int{},
		checkInDates:  map[uint][]time.Time{},
		trainingLogs:  map[uint]int64{},
		healthRecords: map[uint]int64{},
		unlocked:      map[uint]map[string]struct{}{},
		exp:           map[uint]int{},
	}
}

func (f *fakeStore) UserLevel(userID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	level, ok := f.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return level, nil
}

func (f *fakeStore) CountCheckIns(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.checkInDates[userID])), nil
}

func (f *fakeStore) CheckInDates(userID uint) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.checkInDates[userID]...), nil
}

func (f *fakeStore) CountTrainingLogs(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trainingLogs[userID], nil
}

func (f *fakeStore) CountHealthRecords(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthRecords[userID], nil
}

func (f *fakeStore) UnlockedAchievementIDs(userID uint) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.unlocked[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) Unlock(userID uint, achievementID string, expReward int, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlockCalls++
	if f.unlockErrAfter > 0 && f.unlockCalls >= f.unlockErrAfter {
		return false, errors.New("storage unavailable")
	}
	set, ok := f.unlocked[userID]
	if !ok {
		set = map[string]struct{}{}
		f.unlocked[userID] = set
	}
	if _, exists := set[achievementID]; exists {
		return false, nil
	}
	set[achievementID] = struct{}{}
	f.exp[userID] += expReward
	return true, nil
}

func (f *fakeStore) unlockCount(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.unlocked[userID])
}

func engineAt(store AchievementStore, today time.Time, catalog ...models.Achievement) *AchievementEngine {
	e := NewAchievementEngine(store)
	e.now = func() time.Time { return today }
	if len(catalog) > 0 {
		e.catalog = catalog
	}
	return e
}

func TestCheckAndUnlockUserNotFound(t *testing.T) {
	store := newFakeStore()
	e := engineAt(store, day("2024-06-15"))

	if _, err := e.CheckAndUnlock(42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if store.unlockCalls != 0 {
		t.Fatal("no writes expected for a missing user")
	}
}

func TestCheckAndUnlockFirstCheckIn(t *testing.T) {
	store := newFakeStore()
	store.users[1] = 1
	store.checkInDates[1] = []time.Time{day("2024-06-15")}
	e := engineAt(store, day("2024-06-15"))

	unlocked, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First check-in satisfies "checkin >= 1" and the implied 1-day streak
	// does not reach any streak threshold.
	if len(unlocked) != 1 || unlocked[0].ID != "ach-first-checkin" {
		t.Fatalf("unexpected unlock set: %+v", unlocked)
	}
	if store.exp[1] != 10 {
		t.Errorf("exp = %d, want 10", store.exp[1])
	}
}

func TestCheckAndUnlockIdempotent(t *testing.T) {
	store := newFakeStore()
	store.users[1] = 1
	today := day("2024-06-15")
	store.checkInDates[1] = []time.Time{today, daysAgo(today, 1), daysAgo(today, 2)}
	e := engineAt(store, today)

	first, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected unlocks on first call")
	}
	expAfterFirst := store.exp[1]

	second, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second call unlocked %d achievements, want 0", len(second))
	}
	if store.exp[1] != expAfterFirst {
		t.Errorf("experience double-credited: %d -> %d", expAfterFirst, store.exp[1])
	}
}

func TestCheckAndUnlockThresholdExactness(t *testing.T) {
	today := day("2024-06-15")
	catalog := []models.Achievement{{
		ID: "ach-checkin-7", Name: "一周坚持", ExpReward: 30,
		Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 7},
	}}

	// 6 distinct dates: stays locked.
	store := newFakeStore()
	store.users[1] = 1
	for i := 0; i < 6; i++ {
		store.checkInDates[1] = append(store.checkInDates[1], daysAgo(today, i*2))
	}
	e := engineAt(store, today, catalog...)
	unlocked, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("unlocked at 6 check-ins: %+v", unlocked)
	}

	// The 7th unlocks it.
	store.checkInDates[1] = append(store.checkInDates[1], daysAgo(today, 13))
	unlocked, err = e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].ID != "ach-checkin-7" {
		t.Fatalf("expected unlock at exactly 7 check-ins, got %+v", unlocked)
	}
	if store.exp[1] != 30 {
		t.Errorf("exp = %d, want 30", store.exp[1])
	}
}

func TestCheckAndUnlockStreakAndLevelCriteria(t *testing.T) {
	today := day("2024-06-15")
	store := newFakeStore()
	store.users[1] = 5
	for i := 0; i < 3; i++ {
		store.checkInDates[1] = append(store.checkInDates[1], daysAgo(today, i))
	}
	catalog := []models.Achievement{
		{ID: "ach-streak-3", Category: "打卡", ExpReward: 20, Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: 3}},
		{ID: "ach-streak-7", Category: "打卡", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: 7}},
		{ID: "ach-level-5", Category: "等级", ExpReward: 50, Criterion: models.Criterion{Kind: models.CriterionLevel, Threshold: 5}},
	}
	e := engineAt(store, today, catalog...)

	unlocked, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]bool{}
	for _, a := range unlocked {
		got[a.ID] = true
	}
	if !got["ach-streak-3"] || !got["ach-level-5"] || got["ach-streak-7"] {
		t.Fatalf("unexpected unlock set: %+v", unlocked)
	}
	if store.exp[1] != 70 {
		t.Errorf("exp = %d, want 70", store.exp[1])
	}
}

func TestCheckAndUnlockUnwiredKindsNeverMatch(t *testing.T) {
	today := day("2024-06-15")
	store := newFakeStore()
	store.users[1] = 50
	store.healthRecords[1] = 1000
	catalog := []models.Achievement{
		{ID: "ach-health-7", Criterion: models.Criterion{Kind: models.CriterionHealthStreak, Threshold: 7}},
		{ID: "ach-weight-goal", Criterion: models.Criterion{Kind: models.CriterionWeightGoal, Threshold: 1}},
		{ID: "ach-steps-10k", Criterion: models.Criterion{Kind: models.CriterionSteps10K, Threshold: 1}},
		{ID: "ach-early-bird", Criterion: models.Criterion{Kind: models.CriterionEarlyBird, Threshold: 1}},
		{ID: "ach-night-owl", Criterion: models.Criterion{Kind: models.CriterionNightOwl, Threshold: 1}},
	}
	e := engineAt(store, today, catalog...)

	unlocked, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("kinds without evaluators must not unlock: %+v", unlocked)
	}
}

func TestCheckAndUnlockErrorMidPassKeepsCommittedUnlocks(t *testing.T) {
	today := day("2024-06-15")
	store := newFakeStore()
	store.users[1] = 1
	for i := 0; i < 7; i++ {
		store.checkInDates[1] = append(store.checkInDates[1], daysAgo(today, i))
	}
	store.unlockErrAfter = 2 // first unlock succeeds, second fails
	e := engineAt(store, today)

	unlocked, err := e.CheckAndUnlock(1)
	if err == nil {
		t.Fatal("expected storage error")
	}
	if len(unlocked) != 1 {
		t.Fatalf("expected the one committed unlock to be reported, got %d", len(unlocked))
	}

	// Retry completes the remainder without double-crediting.
	store.unlockErrAfter = 0
	expBefore := store.exp[1]
	more, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	for _, a := range more {
		if a.ID == unlocked[0].ID {
			t.Fatalf("achievement %s unlocked twice", a.ID)
		}
	}
	if store.exp[1] < expBefore {
		t.Fatal("experience decreased on retry")
	}
}

// Two concurrent evaluations must produce exactly one unlock record and one
// credit; the loser of the insert race treats the conflict as a no-op.
func TestCheckAndUnlockConcurrentDoubleTrigger(t *testing.T) {
	today := day("2024-06-15")
	catalog := []models.Achievement{{
		ID: "ach-first-checkin", ExpReward: 10,
		Criterion: models.Criterion{Kind: models.CriterionCheckIn, Threshold: 1},
	}}
	store := newFakeStore()
	store.users[1] = 1
	store.checkInDates[1] = []time.Time{today}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := engineAt(store, today, catalog...)
			if _, err := e.CheckAndUnlock(1); err != nil {
				t.Errorf("concurrent call failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := store.unlockCount(1); n != 1 {
		t.Fatalf("unlock records = %d, want exactly 1", n)
	}
	if store.exp[1] != 10 {
		t.Fatalf("exp = %d, want exactly one credit of 10", store.exp[1])
	}
}

func TestCheckAndUnlockReturnsCatalogOrder(t *testing.T) {
	today := day("2024-06-15")
	store := newFakeStore()
	store.users[1] = 1
	for i := 0; i < 7; i++ {
		store.checkInDates[1] = append(store.checkInDates[1], daysAgo(today, i))
	}
	e := engineAt(store, today)

	unlocked, err := e.CheckAndUnlock(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Evaluation order is category then exp reward ascending; within the
	// unlock list rewards must be non-decreasing per category.
	for i := 1; i < len(unlocked); i++ {
		prev, cur := unlocked[i-1], unlocked[i]
		if prev.Category == cur.Category && prev.ExpReward > cur.ExpReward {
			t.Fatalf("unlock order not deterministic: %s(%d) before %s(%d)",
				prev.ID, prev.ExpReward, cur.ID, cur.ExpReward)
		}
	}
}
