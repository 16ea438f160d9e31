package repository

import (
	"context"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
)

// UserRepository defines user-related database operations. GetByID and
// GetByEmail only return active (non-deleted) users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string) error
	// SoftDeleteCascade marks the user deleted and removes the user's diary
	// entries and evaluations inside one transaction.
	SoftDeleteCascade(ctx context.Context, id string) error
}
