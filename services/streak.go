package services

import (
	"sort"
	"time"
)

// Streaks computes the user's current and longest check-in streaks from the
// set of calendar days with at least one check-in. Time-of-day and time zone
// of the inputs are ignored; only the calendar date matters. The function is
// pure: no I/O, deterministic for a given date set and reference day.
//
// The current streak is anchored at the most recent check-in date: if that
// date is today or yesterday relative to `today`, the streak is the run of
// consecutive days ending there; otherwise the streak is broken and current
// is 0. Anchoring at the most recent date (rather than calendar today) means
// a user who checked in every day up to yesterday still sees the full run
// before checking in today.
func Streaks(dates []time.Time, today time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	days := normalizeDays(dates)
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	if gap := daysBetween(days[0], dayOf(today)); gap >= 0 && gap <= 1 {
		current = 1
		for i := 1; i < len(days); i++ {
			if daysBetween(days[i], days[i-1]) != 1 {
				break
			}
			current++
		}
	}

	run := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			if run > longest {
				longest = run
			}
			run = 1
		}
	}
	if run > longest {
		longest = run
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// normalizeDays truncates to day granularity and removes duplicates.
func normalizeDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := dayOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days
}

// dayOf maps a timestamp to its calendar day in UTC. Using UTC avoids DST
// anomalies in day arithmetic.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns b-a in whole days for two already-normalized days.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
