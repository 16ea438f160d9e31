package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/application"
	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/response"
)

type StatsHandler struct {
	Svc    *application.StatsService
	Logger *logrus.Logger
}

func NewStatsHandler(svc *application.StatsService, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{Svc: svc, Logger: logger}
}

// Overview returns the worker-maintained counters, streaks and achievements.
func (h *StatsHandler) Overview(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	ov, err := h.Svc.Overview(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).Error("stats overview failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to load stats", nil)
		return
	}

	achievements := make([]gin.H, 0, len(ov.Achievements))
	for _, a := range ov.Achievements {
		achievements = append(achievements, gin.H{
			"code":        a.Code,
			"name":        a.Name,
			"unlocked_at": a.UnlockedAt,
		})
	}
	response.Success(c, http.StatusOK, gin.H{
		"stats":        statsJSON(ov.Stats),
		"achievements": achievements,
	}, "stats", nil)
}

func statsJSON(s *entity.UserStats) gin.H {
	out := gin.H{
		"diary_entries":  s.DiaryEntries,
		"evaluations":    s.Evaluations,
		"current_streak": s.CurrentStreak,
		"longest_streak": s.LongestStreak,
	}
	if s.LastEntryDate != nil {
		out["last_entry_date"] = s.LastEntryDate.Format(birthDateLayout)
	}
	return out
}
