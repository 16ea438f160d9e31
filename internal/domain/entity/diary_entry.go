package entity

import "time"

// DiaryEntry is a private journal entry. Belongs to exactly one user;
// mutated only by its owner.
type DiaryEntry struct {
	ID        string
	UserID    string
	Content   string
	Mood      int // 1..10
	Tags      []string
	EntryDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DiaryStats aggregates a user's entries over a period.
type DiaryStats struct {
	TotalEntries     int         `json:"total_entries"`
	AvgMood          float64     `json:"avg_mood"`
	MoodDistribution map[int]int `json:"mood_distribution"`
}

// DiaryFilter narrows list queries.
type DiaryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
