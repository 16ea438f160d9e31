package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
	"github.com/sensus-health/sensus-api/internal/jobs"
	"github.com/sensus-health/sensus-api/pkg/helpers"
	"github.com/sensus-health/sensus-api/pkg/scoring"
)

// EvaluationService scores and stores self-assessments. Evaluations are
// immutable once created; history is append-only per user and test type.
type EvaluationService struct {
	Repo   repository.EvaluationRepository
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher
}

var ErrInvalidAnswers = errors.New("invalid answers")

// Submit validates the answers, derives score and severity, and persists the
// evaluation.
func (s *EvaluationService) Submit(ctx context.Context, userID, testType string, answers []int) (*entity.Evaluation, error) {
	t := scoring.TestType(testType)
	if !scoring.Valid(t) {
		return nil, fmt.Errorf("%w: unknown test type %q", ErrInvalidAnswers, testType)
	}
	res, err := scoring.Score(t, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}
	e := &entity.Evaluation{
		UserID:     userID,
		TestType:   testType,
		Answers:    answers,
		TotalScore: res.Total,
		Severity:   res.Severity,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, jobs.Event{
		Type:       jobs.EventEvaluationCompleted,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		TestType:   testType,
		Score:      res.Total,
		Severity:   res.Severity,
	})
	return e, nil
}

func (s *EvaluationService) Get(ctx context.Context, userID, evalID string) (*entity.Evaluation, error) {
	e, err := s.Repo.GetByID(ctx, evalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.UserID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *EvaluationService) List(ctx context.Context, userID string, f entity.EvaluationFilter) ([]*entity.Evaluation, error) {
	evals, err := s.Repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if evals == nil {
		evals = []*entity.Evaluation{}
	}
	return evals, nil
}

// HistoryResult is the chronological history of one test type plus the
// improvement comparison of the two most recent results.
type HistoryResult struct {
	Evaluations   []*entity.Evaluation
	IsImprovement *bool
	Delta         *int
}

// History returns the user's evaluations of testType oldest-first and, when
// at least two exist, whether the latest is an improvement over the previous
// one (direction depends on the test: anxiety-type tests improve downwards).
func (s *EvaluationService) History(ctx context.Context, userID, testType string) (*HistoryResult, error) {
	t := scoring.TestType(testType)
	if !scoring.Valid(t) {
		return nil, fmt.Errorf("%w: unknown test type %q", ErrInvalidAnswers, testType)
	}
	evals, err := s.Repo.History(ctx, userID, testType)
	if err != nil {
		return nil, err
	}
	if evals == nil {
		evals = []*entity.Evaluation{}
	}
	res := &HistoryResult{Evaluations: evals}
	if len(evals) >= 2 {
		latest := evals[len(evals)-1]
		previous := evals[len(evals)-2]
		improved := scoring.IsImprovement(t, latest.TotalScore, previous.TotalScore)
		delta := latest.TotalScore - previous.TotalScore
		res.IsImprovement = &improved
		res.Delta = &delta
	}
	return res, nil
}

func (s *EvaluationService) publish(ctx context.Context, ev jobs.Event) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", ev.Type).Warn("event publish failed")
	}
}
