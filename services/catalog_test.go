package services

import "testing"

func TestAchievementCatalogIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range AchievementCatalog() {
		if seen[a.ID] {
			t.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" || a.ExpReward < 0 {
			t.Errorf("malformed catalog entry %q", a.ID)
		}
	}
	if len(seen) != len(achievementCatalog) {
		t.Fatalf("catalog has %d entries, %d unique ids", len(achievementCatalog), len(seen))
	}
}

func TestAchievementCatalogOrderDeterministic(t *testing.T) {
	got := AchievementCatalog()
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.Category > cur.Category {
			t.Fatalf("categories out of order at %d: %q after %q", i, cur.Category, prev.Category)
		}
		if prev.Category == cur.Category && prev.ExpReward > cur.ExpReward {
			t.Fatalf("rewards out of order within %q: %d after %d", cur.Category, cur.ExpReward, prev.ExpReward)
		}
	}

	again := AchievementCatalog()
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Fatalf("order differs between calls at %d: %q vs %q", i, got[i].ID, again[i].ID)
		}
	}
}

func TestAchievementCatalogReturnsCopy(t *testing.T) {
	first := AchievementCatalog()
	first[0].ExpReward = 9999
	first[0].ID = "mutated"

	second := AchievementCatalog()
	if second[0].ID == "mutated" || second[0].ExpReward == 9999 {
		t.Fatal("catalog mutated through returned slice")
	}
}
