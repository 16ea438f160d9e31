package repository

import (
	"context"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
)

// EvaluationRepository defines evaluation database operations.
// Evaluations are append-only; there is no update or delete.
type EvaluationRepository interface {
	Create(ctx context.Context, e *entity.Evaluation) error
	GetByID(ctx context.Context, id string) (*entity.Evaluation, error)
	ListByUser(ctx context.Context, userID string, f entity.EvaluationFilter) ([]*entity.Evaluation, error)
	// AllByUser returns every evaluation the user owns, unpaginated. Export only.
	AllByUser(ctx context.Context, userID string) ([]*entity.Evaluation, error)
	// History returns the user's evaluations of one test type, oldest first.
	History(ctx context.Context, userID, testType string) ([]*entity.Evaluation, error)
}
