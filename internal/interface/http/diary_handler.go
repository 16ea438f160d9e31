package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/response"
	"github.com/sensus-health/sensus-api/pkg/validation"
)

type DiaryHandler struct {
	Svc    *application.DiaryService
	Logger *logrus.Logger
}

func NewDiaryHandler(svc *application.DiaryService, logger *logrus.Logger) *DiaryHandler {
	return &DiaryHandler{Svc: svc, Logger: logger}
}

type createEntryRequest struct {
	Content string   `json:"content" binding:"required"`
	Mood    int      `json:"mood" binding:"required,mood"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

type updateEntryRequest struct {
	Content *string  `json:"content"`
	Mood    *int     `json:"mood" binding:"omitempty,mood"`
	Tags    []string `json:"tags"`
	Date    *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

func entryJSON(e *entity.DiaryEntry) gin.H {
	return gin.H{
		"id":         e.ID,
		"content":    e.Content,
		"mood":       e.Mood,
		"tags":       e.Tags,
		"date":       e.EntryDate.Format(birthDateLayout),
		"created_at": e.CreatedAt,
		"updated_at": e.UpdatedAt,
	}
}

func entriesJSON(entries []*entity.DiaryEntry) []gin.H {
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON(e))
	}
	return out
}

func (h *DiaryHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.CreateEntryInput{Content: req.Content, Mood: req.Mood, Tags: req.Tags}
	if req.Date != "" {
		d, _ := time.Parse(birthDateLayout, req.Date)
		in.EntryDate = d
	}
	e, err := h.Svc.Create(c.Request.Context(), uid, in)
	if err != nil {
		h.Logger.WithError(err).Error("diary create failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create entry", nil)
		return
	}
	response.Success(c, http.StatusCreated, entryJSON(e), "entry created", nil)
}

func (h *DiaryHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	f := entity.DiaryFilter{Limit: limit, Offset: offset}
	if from, ok := queryDate(c, "start_date"); ok {
		f.StartDate = &from
	}
	if to, ok := queryDate(c, "end_date"); ok {
		f.EndDate = &to
	}

	entries, total, err := h.Svc.List(c.Request.Context(), uid, f)
	if err != nil {
		h.Logger.WithError(err).Error("diary list failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to list entries", nil)
		return
	}
	response.Success(c, http.StatusOK, entriesJSON(entries), "entries", map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *DiaryHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	e, err := h.Svc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.ownershipError(c, err, "diary get failed")
		return
	}
	response.Success(c, http.StatusOK, entryJSON(e), "entry", nil)
}

func (h *DiaryHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.UpdateEntryInput{Content: req.Content, Mood: req.Mood, Tags: req.Tags}
	if req.Date != nil {
		d, _ := time.Parse(birthDateLayout, *req.Date)
		in.EntryDate = &d
	}
	e, err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		h.ownershipError(c, err, "diary update failed")
		return
	}
	response.Success(c, http.StatusOK, entryJSON(e), "entry updated", nil)
}

func (h *DiaryHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.ownershipError(c, err, "diary delete failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "entry deleted", nil)
}

// Stats returns mood aggregates over a trailing window: 7d, 30d, 90d or 365d.
func (h *DiaryHandler) Stats(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	days, ok := parsePeriod(c.DefaultQuery("period", "30d"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "period must be one of 7d, 30d, 90d, 365d", nil)
		return
	}
	stats, err := h.Svc.Stats(c.Request.Context(), uid, days)
	if err != nil {
		h.Logger.WithError(err).Error("diary stats failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to compute stats", nil)
		return
	}
	response.Success(c, http.StatusOK, stats, "stats", map[string]any{"period_days": days})
}

func (h *DiaryHandler) Search(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	q := strings.TrimSpace(c.Query("q"))
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	var mood *int
	if raw := c.Query("mood"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 10 {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "mood must be an integer between 1 and 10", nil)
			return
		}
		mood = &m
	}

	hits, err := h.Svc.Search(c.Request.Context(), uid, q, tags, mood, queryInt(c, "limit", 20))
	if err != nil {
		h.Logger.WithError(err).Error("diary search failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *DiaryHandler) ownershipError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "entry not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "entry belongs to another user", nil)
	default:
		h.Logger.WithError(err).Error(logMsg)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "request failed", nil)
	}
}

func parsePeriod(p string) (int, bool) {
	switch p {
	case "7d":
		return 7, true
	case "30d":
		return 30, true
	case "90d":
		return 90, true
	case "365d":
		return 365, true
	}
	return 0, false
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
