package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/validation"
)

type memEvalRepo struct {
	evals []*entity.Evaluation
}

func (m *memEvalRepo) Create(_ context.Context, e *entity.Evaluation) error {
	e.ID = fmt.Sprintf("eval-%d", len(m.evals)+1)
	e.CompletedAt = time.Now()
	m.evals = append(m.evals, e)
	return nil
}

func (m *memEvalRepo) GetByID(_ context.Context, id string) (*entity.Evaluation, error) {
	for _, e := range m.evals {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEvalRepo) ListByUser(_ context.Context, userID string, _ entity.EvaluationFilter) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range m.evals {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvalRepo) AllByUser(_ context.Context, userID string) ([]*entity.Evaluation, error) {
	return m.ListByUser(context.Background(), userID, entity.EvaluationFilter{})
}

func (m *memEvalRepo) History(_ context.Context, userID, testType string) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, e := range m.evals {
		if e.UserID == userID && e.TestType == testType {
			out = append(out, e)
		}
	}
	return out, nil
}

func evalTestRouter(repo *memEvalRepo, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger := logrus.New()
	svc := &application.EvaluationService{Repo: repo, Logger: logger}
	h := NewEvaluationHandler(svc, logger)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.CtxUserIDKey, userID) })
	r.POST("/evaluations", h.Submit)
	r.GET("/evaluations/history", h.History)
	r.GET("/evaluations/:id", h.Get)
	return r
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Data    map[string]any `json:"data"`
}

func TestSubmitEvaluationEndpoint(t *testing.T) {
	r := evalTestRouter(&memEvalRepo{}, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/evaluations",
		strings.NewReader(`{"test_type":"gad7","answers":[2,1,3,0,2,1,1]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, float64(10), env.Data["total_score"])
	assert.Equal(t, "Moderada", env.Data["severity"])
}

func TestSubmitEvaluationRejectsUnknownTest(t *testing.T) {
	r := evalTestRouter(&memEvalRepo{}, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/evaluations",
		strings.NewReader(`{"test_type":"mystery","answers":[0,0,0]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "validation_error", env.Error)
}

func TestGetEvaluationOwnership(t *testing.T) {
	repo := &memEvalRepo{}
	owner := evalTestRouter(repo, "u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/evaluations",
		strings.NewReader(`{"test_type":"gad7","answers":[0,0,0,0,0,0,0]}`))
	req.Header.Set("Content-Type", "application/json")
	owner.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	intruder := evalTestRouter(repo, "u2")
	w = httptest.NewRecorder()
	intruder.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/evaluations/eval-1", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	owner.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/evaluations/eval-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryEndpointReportsTrend(t *testing.T) {
	repo := &memEvalRepo{}
	r := evalTestRouter(repo, "u1")

	for _, answers := range []string{"[3,3,3,3,3,0,0]", "[1,1,1,1,1,0,0]"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/evaluations",
			strings.NewReader(`{"test_type":"gad7","answers":`+answers+`}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/evaluations/history?test_type=gad7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, true, env.Data["is_improvement"])
	assert.Equal(t, float64(-10), env.Data["score_delta"])
}
