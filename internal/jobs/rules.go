package jobs

import "time"

// Achievement codes and display names.
type achievementRule struct {
	Code string
	Name string
	// Unlocked reports whether the rule fires for the given stats.
	Unlocked func(diaryEntries, evaluations, currentStreak int) bool
}

var achievementRules = []achievementRule{
	{"first_entry", "Primera entrada", func(d, e, s int) bool { return d >= 1 }},
	{"ten_entries", "Diez entradas", func(d, e, s int) bool { return d >= 10 }},
	{"streak_7", "Racha de 7 días", func(d, e, s int) bool { return s >= 7 }},
	{"streak_30", "Racha de 30 días", func(d, e, s int) bool { return s >= 30 }},
	{"first_evaluation", "Primera evaluación", func(d, e, s int) bool { return e >= 1 }},
	{"five_evaluations", "Cinco evaluaciones", func(d, e, s int) bool { return e >= 5 }},
}

// NextStreak advances a diary streak given the previous last-entry date and
// the date of the new entry. Entries on the same day keep the streak; an
// entry on the next calendar day extends it; any gap resets it to 1.
func NextStreak(current int, lastEntry *time.Time, entryDate time.Time) int {
	day := entryDate.Truncate(24 * time.Hour)
	if lastEntry == nil || current == 0 {
		return 1
	}
	last := lastEntry.Truncate(24 * time.Hour)
	switch day.Sub(last) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}
