package application

import (
	"context"
	"errors"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

// StatsService reads the counters and achievements maintained by the worker.
type StatsService struct {
	Repo repository.StatsRepository
}

type StatsOverview struct {
	Stats        *entity.UserStats
	Achievements []*entity.Achievement
}

// Overview returns the user's stats plus unlocked achievements. A user the
// worker has not seen yet gets zeroed counters, not an error.
func (s *StatsService) Overview(ctx context.Context, userID string) (*StatsOverview, error) {
	stats, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		stats = &entity.UserStats{UserID: userID}
	} else if err != nil {
		return nil, err
	}
	achievements, err := s.Repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	if achievements == nil {
		achievements = []*entity.Achievement{}
	}
	return &StatsOverview{Stats: stats, Achievements: achievements}, nil
}
