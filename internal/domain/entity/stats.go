package entity

import "time"

// UserStats holds the running counters recomputed by the background worker.
// Updates are not deduplicated: at-least-once event delivery can double-count.
type UserStats struct {
	UserID        string
	DiaryEntries  int
	Evaluations   int
	CurrentStreak int
	LongestStreak int
	LastEntryDate *time.Time
	UpdatedAt     time.Time
}

// Achievement is a threshold-based unlock owned by a user.
type Achievement struct {
	ID         string
	UserID     string
	Code       string
	Name       string
	UnlockedAt time.Time
}
