package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
)

// fakeEvalRepo keeps evaluations in memory, append-only like the real one.
type fakeEvalRepo struct {
	evals []*entity.Evaluation
}

func (f *fakeEvalRepo) Create(_ context.Context, e *entity.Evaluation) error {
	e.ID = fmt.Sprintf("eval-%d", len(f.evals)+1)
	e.CompletedAt = time.Now()
	f.evals = append(f.evals, e)
	return nil
}

func (f *fakeEvalRepo) GetByID(_ context.Context, id string) (*entity.Evaluation, error) {
	for _, e := range f.evals {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeEvalRepo) ListByUser(_ context.Context, userID string, _ entity.EvaluationFilter) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range f.evals {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvalRepo) AllByUser(_ context.Context, userID string) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range f.evals {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvalRepo) History(_ context.Context, userID, testType string) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range f.evals {
		if e.UserID == userID && e.TestType == testType {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestSubmitScoresAndStores(t *testing.T) {
	repo := &fakeEvalRepo{}
	svc := &EvaluationService{Repo: repo}

	e, err := svc.Submit(context.Background(), "u1", "gad7", []int{2, 1, 3, 0, 2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 10, e.TotalScore)
	assert.Equal(t, "Moderada", e.Severity)
	assert.Len(t, repo.evals, 1)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	svc := &EvaluationService{Repo: &fakeEvalRepo{}}

	_, err := svc.Submit(context.Background(), "u1", "gad7", []int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidAnswers)

	_, err = svc.Submit(context.Background(), "u1", "notatest", []int{0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidAnswers)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := &fakeEvalRepo{}
	svc := &EvaluationService{Repo: repo}

	e, err := svc.Submit(context.Background(), "u1", "gad7", []int{0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "u2", e.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryImprovement(t *testing.T) {
	repo := &fakeEvalRepo{}
	svc := &EvaluationService{Repo: repo}
	ctx := context.Background()

	res, err := svc.History(ctx, "u1", "gad7")
	require.NoError(t, err)
	assert.Empty(t, res.Evaluations)
	assert.Nil(t, res.IsImprovement)

	// Anxiety scores improve downwards: 15 then 8 is an improvement.
	_, err = svc.Submit(ctx, "u1", "gad7", []int{3, 3, 3, 3, 3, 0, 0})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "u1", "gad7", []int{2, 2, 2, 1, 1, 0, 0})
	require.NoError(t, err)

	res, err = svc.History(ctx, "u1", "gad7")
	require.NoError(t, err)
	require.Len(t, res.Evaluations, 2)
	require.NotNil(t, res.IsImprovement)
	assert.True(t, *res.IsImprovement)
	assert.Equal(t, -7, *res.Delta)
}

func TestHistoryRejectsUnknownTest(t *testing.T) {
	svc := &EvaluationService{Repo: &fakeEvalRepo{}}
	_, err := svc.History(context.Background(), "u1", "mystery")
	assert.ErrorIs(t, err, ErrInvalidAnswers)
}
