package services

// Experience needed to advance from level N is N*100. Leftover experience
// rolls over into the next level.
const expPerLevelUnit = 100

// ApplyExperience adds gained experience to a user's running total and
// performs any resulting level-ups. Returns the new level, the remaining
// experience within that level, and whether at least one level was gained.
func ApplyExperience(level, exp, gain int) (int, int, bool) {
	if level < 1 {
		level = 1
	}
	exp += gain
	leveledUp := false
	for exp >= level*expPerLevelUnit {
		exp -= level * expPerLevelUnit
		level++
		leveledUp = true
	}
	return level, exp, leveledUp
}

// ExpToNextLevel reports how much more experience the user needs before the
// next level-up.
func ExpToNextLevel(level, exp int) int {
	if level < 1 {
		level = 1
	}
	remaining := level*expPerLevelUnit - exp
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// DeductExperience removes experience (e.g. on check-in cancellation) without
// ever taking the total below zero. Levels already gained are not revoked.
func DeductExperience(exp, amount int) int {
	exp -= amount
	if exp < 0 {
		exp = 0
	}
	return exp
}
