package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/response"
	"github.com/sensus-health/sensus-api/pkg/validation"
)

type EvaluationHandler struct {
	Svc    *application.EvaluationService
	Logger *logrus.Logger
}

func NewEvaluationHandler(svc *application.EvaluationService, logger *logrus.Logger) *EvaluationHandler {
	return &EvaluationHandler{Svc: svc, Logger: logger}
}

type submitEvaluationRequest struct {
	TestType string `json:"test_type" binding:"required,testtype"`
	Answers  []int  `json:"answers" binding:"required,min=1"`
}

func evalJSON(e *entity.Evaluation) gin.H {
	return gin.H{
		"id":           e.ID,
		"test_type":    e.TestType,
		"answers":      e.Answers,
		"total_score":  e.TotalScore,
		"severity":     e.Severity,
		"completed_at": e.CompletedAt,
	}
}

func evalsJSON(evals []*entity.Evaluation) []gin.H {
	out := make([]gin.H, 0, len(evals))
	for _, e := range evals {
		out = append(out, evalJSON(e))
	}
	return out
}

func (h *EvaluationHandler) Submit(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req submitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}
	e, err := h.Svc.Submit(c.Request.Context(), uid, req.TestType, req.Answers)
	if err != nil {
		if errors.Is(err, application.ErrInvalidAnswers) {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
			return
		}
		h.Logger.WithError(err).Error("evaluation submit failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to store evaluation", nil)
		return
	}
	response.Success(c, http.StatusCreated, evalJSON(e), "evaluation recorded", nil)
}

func (h *EvaluationHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	f := entity.EvaluationFilter{
		TestType: c.Query("test_type"),
		Limit:    limit,
		Offset:   offset,
	}
	if from, ok := queryDate(c, "date_from"); ok {
		f.DateFrom = &from
	}
	if to, ok := queryDate(c, "date_to"); ok {
		f.DateTo = &to
	}
	if raw := c.Query("score_min"); raw != "" {
		n := queryInt(c, "score_min", 0)
		f.ScoreMin = &n
	}
	if raw := c.Query("score_max"); raw != "" {
		n := queryInt(c, "score_max", 0)
		f.ScoreMax = &n
	}

	evals, err := h.Svc.List(c.Request.Context(), uid, f)
	if err != nil {
		h.Logger.WithError(err).Error("evaluation list failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to list evaluations", nil)
		return
	}
	response.Success(c, http.StatusOK, evalsJSON(evals), "evaluations", map[string]any{
		"limit":  limit,
		"offset": offset,
		"count":  len(evals),
	})
}

func (h *EvaluationHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	e, err := h.Svc.Get(c.Request.Context(), uid, c.Param("id"))
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "evaluation not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "evaluation belongs to another user", nil)
	case err != nil:
		h.Logger.WithError(err).Error("evaluation get failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "request failed", nil)
	default:
		response.Success(c, http.StatusOK, evalJSON(e), "evaluation", nil)
	}
}

// History returns the chronological results of one test type plus the trend
// between the two most recent submissions.
func (h *EvaluationHandler) History(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	res, err := h.Svc.History(c.Request.Context(), uid, c.Query("test_type"))
	if err != nil {
		if errors.Is(err, application.ErrInvalidAnswers) {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
			return
		}
		h.Logger.WithError(err).Error("evaluation history failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to load history", nil)
		return
	}
	data := gin.H{"evaluations": evalsJSON(res.Evaluations)}
	if res.IsImprovement != nil {
		data["is_improvement"] = *res.IsImprovement
		data["score_delta"] = *res.Delta
	}
	response.Success(c, http.StatusOK, data, "history", map[string]any{"count": len(res.Evaluations)})
}
