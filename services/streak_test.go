package services

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func daysAgo(today time.Time, n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func TestStreaksEmpty(t *testing.T) {
	current, longest := Streaks(nil, day("2024-06-15"))
	if current != 0 || longest != 0 {
		t.Fatalf("expected 0/0, got current=%d longest=%d", current, longest)
	}
}

func TestStreaksTable(t *testing.T) {
	today := day("2024-06-15")

	tests := []struct {
		name    string
		offsets []int // days before today
		current int
		longest int
	}{
		{"single today", []int{0}, 1, 1},
		{"single yesterday", []int{1}, 1, 1},
		{"single stale", []int{5}, 0, 1},
		{"broken streak", []int{4, 5}, 0, 2},
		{"continuous run", []int{0, 1, 2}, 3, 3},
		{"longest not current", []int{0, 10, 11, 12}, 1, 3},
		{"run ending yesterday", []int{1, 2, 3, 4}, 4, 4},
		{"two runs", []int{0, 1, 5, 6, 7, 8, 9}, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := make([]time.Time, 0, len(tt.offsets))
			for _, off := range tt.offsets {
				dates = append(dates, daysAgo(today, off))
			}
			current, longest := Streaks(dates, today)
			if current != tt.current || longest != tt.longest {
				t.Errorf("got current=%d longest=%d, want %d/%d",
					current, longest, tt.current, tt.longest)
			}
		})
	}
}

// The anchor for the backward walk is the most recent check-in date, not
// calendar today: a full week of check-ins ending yesterday is an unbroken
// 7-day streak even before today's check-in happens.
func TestStreaksAnchorMostRecentDate(t *testing.T) {
	today := day("2024-01-08")
	dates := []time.Time{
		day("2024-01-01"), day("2024-01-02"), day("2024-01-03"),
		day("2024-01-04"), day("2024-01-05"), day("2024-01-06"),
		day("2024-01-07"),
	}
	current, longest := Streaks(dates, today)
	if current != 7 {
		t.Errorf("current = %d, want 7 (anchored at yesterday)", current)
	}
	if longest != 7 {
		t.Errorf("longest = %d, want 7", longest)
	}

	// Two days since the last check-in breaks the streak.
	current, longest = Streaks(dates, day("2024-01-09"))
	if current != 0 {
		t.Errorf("current = %d, want 0 after a missed day", current)
	}
	if longest != 7 {
		t.Errorf("longest = %d, want 7", longest)
	}
}

func TestStreaksMonthAndYearBoundary(t *testing.T) {
	dates := []time.Time{
		day("2023-12-30"), day("2023-12-31"),
		day("2024-01-01"), day("2024-01-02"),
	}
	current, longest := Streaks(dates, day("2024-01-02"))
	if current != 4 || longest != 4 {
		t.Fatalf("got current=%d longest=%d, want 4/4 across year boundary", current, longest)
	}
}

func TestStreaksIgnoresTimeOfDayAndDuplicates(t *testing.T) {
	today := day("2024-06-15")
	dates := []time.Time{
		time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC), // duplicate day
		time.Date(2024, 6, 14, 12, 30, 0, 0, time.UTC),
	}
	current, longest := Streaks(dates, today)
	if current != 2 || longest != 2 {
		t.Fatalf("got current=%d longest=%d, want 2/2", current, longest)
	}
}

func TestStreaksDeterministicForUnsortedInput(t *testing.T) {
	today := day("2024-06-15")
	a := []time.Time{daysAgo(today, 2), daysAgo(today, 0), daysAgo(today, 1)}
	b := []time.Time{daysAgo(today, 0), daysAgo(today, 1), daysAgo(today, 2)}

	c1, l1 := Streaks(a, today)
	c2, l2 := Streaks(b, today)
	if c1 != c2 || l1 != l2 {
		t.Fatalf("ordering changed result: %d/%d vs %d/%d", c1, l1, c2, l2)
	}
}
