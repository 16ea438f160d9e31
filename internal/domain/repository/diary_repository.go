package repository

import (
	"context"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
)

// DiaryRepository defines diary-entry database operations. All reads are
// scoped by userID; ownership of single entries is verified by callers
// comparing the returned entity's UserID.
type DiaryRepository interface {
	Create(ctx context.Context, e *entity.DiaryEntry) error
	GetByID(ctx context.Context, id string) (*entity.DiaryEntry, error)
	ListByUser(ctx context.Context, userID string, f entity.DiaryFilter) ([]*entity.DiaryEntry, int, error)
	// AllByUser returns every entry the user owns, unpaginated. Export only.
	AllByUser(ctx context.Context, userID string) ([]*entity.DiaryEntry, error)
	Update(ctx context.Context, e *entity.DiaryEntry) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, userID string, days int) (*entity.DiaryStats, error)
}
