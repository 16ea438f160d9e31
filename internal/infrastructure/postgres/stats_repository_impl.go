package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) Get(ctx context.Context, userID string) (*entity.UserStats, error) {
	s := &entity.UserStats{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, diary_entries, evaluations, current_streak, longest_streak, last_entry_date, updated_at
		FROM user_stats
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&s.UserID, &s.DiaryEntries, &s.Evaluations, &s.CurrentStreak,
		&s.LongestStreak, &s.LastEntryDate, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *StatsRepository) Upsert(ctx context.Context, s *entity.UserStats) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_stats (user_id, diary_entries, evaluations, current_streak, longest_streak, last_entry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id) DO UPDATE SET
			diary_entries = EXCLUDED.diary_entries,
			evaluations = EXCLUDED.evaluations,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_entry_date = EXCLUDED.last_entry_date,
			updated_at = now()
	`, s.UserID, s.DiaryEntries, s.Evaluations, s.CurrentStreak, s.LongestStreak, s.LastEntryDate)
	return err
}

func (r *StatsRepository) ListAchievements(ctx context.Context, userID string) ([]*entity.Achievement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, code, name, unlocked_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY unlocked_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Achievement
	for rows.Next() {
		a := &entity.Achievement{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Code, &a.Name, &a.UnlockedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *StatsRepository) UnlockAchievement(ctx context.Context, a *entity.Achievement) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO achievements (user_id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, code) DO NOTHING
		RETURNING id, unlocked_at
	`, a.UserID, a.Code, a.Name)
	if err := row.Scan(&a.ID, &a.UnlockedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ repository.StatsRepository = (*StatsRepository)(nil)
