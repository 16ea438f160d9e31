package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sensus-health/sensus-api/internal/container"
	handlers "github.com/sensus-health/sensus-api/internal/interface/http"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// EvaluationModule wires self-assessment routes. Everything requires a session.
type EvaluationModule struct {
	Handler *handlers.EvaluationHandler
	JWT     *helpers.JWTManager
}

func NewEvaluationModule(h *handlers.EvaluationHandler, jwt *helpers.JWTManager) *EvaluationModule {
	return &EvaluationModule{Handler: h, JWT: jwt}
}

func (m *EvaluationModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	evals := rg.Group("/evaluations")
	evals.Use(middleware.Auth(rdb, m.JWT))
	evals.Use(middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		evals.POST("", m.Handler.Submit)
		evals.GET("", m.Handler.List)
		evals.GET("/history", m.Handler.History)
		evals.GET("/:id", m.Handler.Get)
	}
}
