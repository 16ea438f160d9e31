package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

type DiaryRepository struct {
	pool *pgxpool.Pool
}

func NewDiaryRepository(pool *pgxpool.Pool) *DiaryRepository {
	return &DiaryRepository{pool: pool}
}

func (r *DiaryRepository) Create(ctx context.Context, e *entity.DiaryEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO diary_entries (user_id, content, mood, tags, entry_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.Content, e.Mood, e.Tags, e.EntryDate)
	return row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *DiaryRepository) GetByID(ctx context.Context, id string) (*entity.DiaryEntry, error) {
	e := &entity.DiaryEntry{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, content, mood, tags, entry_date, created_at, updated_at
		FROM diary_entries
		WHERE id = $1
	`, id)
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &e.Mood, &e.Tags, &e.EntryDate,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *DiaryRepository) ListByUser(ctx context.Context, userID string, f entity.DiaryFilter) ([]*entity.DiaryEntry, int, error) {
	where := "WHERE user_id = $1"
	args := []any{userID}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM diary_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	limitClause += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, content, mood, tags, entry_date, created_at, updated_at
		FROM diary_entries `+where+limitClause, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*entity.DiaryEntry
	for rows.Next() {
		e := &entity.DiaryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Mood, &e.Tags, &e.EntryDate,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// AllByUser streams the user's full history without a LIMIT: data exports
// must not be clamped to a page.
func (r *DiaryRepository) AllByUser(ctx context.Context, userID string) ([]*entity.DiaryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, content, mood, tags, entry_date, created_at, updated_at
		FROM diary_entries
		WHERE user_id = $1
		ORDER BY entry_date ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.DiaryEntry
	for rows.Next() {
		e := &entity.DiaryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Mood, &e.Tags, &e.EntryDate,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *DiaryRepository) Update(ctx context.Context, e *entity.DiaryEntry) error {
	e.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE diary_entries
		SET content = $1, mood = $2, tags = $3, entry_date = $4, updated_at = $5
		WHERE id = $6
	`, e.Content, e.Mood, e.Tags, e.EntryDate, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DiaryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's entries over the trailing N days.
func (r *DiaryRepository) Stats(ctx context.Context, userID string, days int) (*entity.DiaryStats, error) {
	since := time.Now().AddDate(0, 0, -days)
	rows, err := r.pool.Query(ctx, `
		SELECT mood, count(*)
		FROM diary_entries
		WHERE user_id = $1 AND entry_date >= $2
		GROUP BY mood
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &entity.DiaryStats{MoodDistribution: map[int]int{}}
	sum := 0
	for rows.Next() {
		var mood, count int
		if err := rows.Scan(&mood, &count); err != nil {
			return nil, err
		}
		stats.MoodDistribution[mood] = count
		stats.TotalEntries += count
		sum += mood * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if stats.TotalEntries > 0 {
		stats.AvgMood = float64(sum) / float64(stats.TotalEntries)
	}
	return stats, nil
}

var _ repository.DiaryRepository = (*DiaryRepository)(nil)
