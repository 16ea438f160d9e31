package entity

import "time"

// Evaluation is one completed self-assessment. Records are append-only:
// score and severity are derived at creation and never change.
type Evaluation struct {
	ID          string
	UserID      string
	TestType    string // gad7, phq9, pss, wellness, selfesteem
	Answers     []int
	TotalScore  int
	Severity    string
	CompletedAt time.Time
}

// EvaluationFilter narrows list queries.
type EvaluationFilter struct {
	TestType string
	DateFrom *time.Time
	DateTo   *time.Time
	ScoreMin *int
	ScoreMax *int
	Limit    int
	Offset   int
}
