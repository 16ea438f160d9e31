package repository

import (
	"context"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
)

// StatsRepository persists the worker-maintained counters and achievements.
type StatsRepository interface {
	Get(ctx context.Context, userID string) (*entity.UserStats, error)
	Upsert(ctx context.Context, s *entity.UserStats) error
	ListAchievements(ctx context.Context, userID string) ([]*entity.Achievement, error)
	// UnlockAchievement inserts the achievement if the user does not already
	// have it; returns true when a new row was created.
	UnlockAchievement(ctx context.Context, a *entity.Achievement) (bool, error)
}
