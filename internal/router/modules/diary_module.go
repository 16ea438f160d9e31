package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sensus-health/sensus-api/internal/container"
	handlers "github.com/sensus-health/sensus-api/internal/interface/http"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// DiaryModule wires journal routes. Everything requires a session.
type DiaryModule struct {
	Handler *handlers.DiaryHandler
	JWT     *helpers.JWTManager
}

func NewDiaryModule(h *handlers.DiaryHandler, jwt *helpers.JWTManager) *DiaryModule {
	return &DiaryModule{Handler: h, JWT: jwt}
}

func (m *DiaryModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	diary := rg.Group("/diary")
	diary.Use(middleware.Auth(rdb, m.JWT))
	diary.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		diary.POST("", m.Handler.Create)
		diary.GET("", m.Handler.List)
		diary.GET("/stats", m.Handler.Stats)
		diary.GET("/search", m.Handler.Search)
		diary.GET("/:id", m.Handler.Get)
		diary.PUT("/:id", m.Handler.Update)
		diary.DELETE("/:id", m.Handler.Delete)
	}
}
