package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

type EvaluationRepository struct {
	pool *pgxpool.Pool
}

func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

func (r *EvaluationRepository) Create(ctx context.Context, e *entity.Evaluation) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO evaluations (user_id, test_type, answers, total_score, severity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, completed_at
	`, e.UserID, e.TestType, e.Answers, e.TotalScore, e.Severity)
	return row.Scan(&e.ID, &e.CompletedAt)
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id string) (*entity.Evaluation, error) {
	e := &entity.Evaluation{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, test_type, answers, total_score, severity, completed_at
		FROM evaluations
		WHERE id = $1
	`, id)
	if err := row.Scan(&e.ID, &e.UserID, &e.TestType, &e.Answers, &e.TotalScore,
		&e.Severity, &e.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EvaluationRepository) ListByUser(ctx context.Context, userID string, f entity.EvaluationFilter) ([]*entity.Evaluation, error) {
	where := "WHERE user_id = $1"
	args := []any{userID}
	if f.TestType != "" {
		args = append(args, f.TestType)
		where += fmt.Sprintf(" AND test_type = $%d", len(args))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		where += fmt.Sprintf(" AND completed_at >= $%d", len(args))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		where += fmt.Sprintf(" AND completed_at <= $%d", len(args))
	}
	if f.ScoreMin != nil {
		args = append(args, *f.ScoreMin)
		where += fmt.Sprintf(" AND total_score >= $%d", len(args))
	}
	if f.ScoreMax != nil {
		args = append(args, *f.ScoreMax)
		where += fmt.Sprintf(" AND total_score <= $%d", len(args))
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	clause := fmt.Sprintf(" ORDER BY completed_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	clause += fmt.Sprintf(" OFFSET $%d", len(args))

	return r.query(ctx, where+clause, args)
}

func (r *EvaluationRepository) History(ctx context.Context, userID, testType string) ([]*entity.Evaluation, error) {
	return r.query(ctx, "WHERE user_id = $1 AND test_type = $2 ORDER BY completed_at ASC", []any{userID, testType})
}

// AllByUser returns the full history without a LIMIT, for data exports.
func (r *EvaluationRepository) AllByUser(ctx context.Context, userID string) ([]*entity.Evaluation, error) {
	return r.query(ctx, "WHERE user_id = $1 ORDER BY completed_at ASC", []any{userID})
}

func (r *EvaluationRepository) query(ctx context.Context, tail string, args []any) ([]*entity.Evaluation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, test_type, answers, total_score, severity, completed_at
		FROM evaluations `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Evaluation
	for rows.Next() {
		e := &entity.Evaluation{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.TestType, &e.Answers, &e.TotalScore,
			&e.Severity, &e.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.EvaluationRepository = (*EvaluationRepository)(nil)
