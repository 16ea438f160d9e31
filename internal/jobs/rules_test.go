package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestNextStreak(t *testing.T) {
	yesterday := day("2026-03-01")
	tests := []struct {
		name      string
		current   int
		lastEntry *time.Time
		entryDate time.Time
		want      int
	}{
		{"first ever entry", 0, nil, day("2026-03-02"), 1},
		{"consecutive day extends", 4, &yesterday, day("2026-03-02"), 5},
		{"same day keeps streak", 4, &yesterday, day("2026-03-01"), 4},
		{"gap resets", 9, &yesterday, day("2026-03-05"), 1},
		{"zero streak with stale date", 0, &yesterday, day("2026-03-02"), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextStreak(tc.current, tc.lastEntry, tc.entryDate))
		})
	}
}

func TestAchievementRules(t *testing.T) {
	unlocked := func(diary, evals, streak int) []string {
		var codes []string
		for _, r := range achievementRules {
			if r.Unlocked(diary, evals, streak) {
				codes = append(codes, r.Code)
			}
		}
		return codes
	}

	assert.Empty(t, unlocked(0, 0, 0))
	assert.Equal(t, []string{"first_entry"}, unlocked(1, 0, 1))
	assert.Contains(t, unlocked(10, 0, 2), "ten_entries")
	assert.Contains(t, unlocked(7, 0, 7), "streak_7")
	assert.NotContains(t, unlocked(7, 0, 6), "streak_7")
	assert.Contains(t, unlocked(30, 0, 30), "streak_30")
	assert.Equal(t, []string{"first_evaluation"}, unlocked(0, 1, 0))
	assert.Contains(t, unlocked(0, 5, 0), "five_evaluations")
}
