// Package jobs carries the asynchronous side of the system: domain events
// published by the API and the worker handlers that consume them.
//
// Delivery is at-least-once and events carry no dedup key, so a redelivered
// event can double-count stats.
package jobs

import "time"

// Event types put on the event queue.
const (
	EventDiaryEntryCreated   = "diary.entry.created"
	EventEvaluationCompleted = "evaluation.completed"
)

// Event is the envelope published to RabbitMQ when a domain fact occurs.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`

	// Diary payload
	EntryDate string `json:"entry_date,omitempty"` // YYYY-MM-DD

	// Evaluation payload
	TestType string `json:"test_type,omitempty"`
	Score    int    `json:"score,omitempty"`
	Severity string `json:"severity,omitempty"`
}
