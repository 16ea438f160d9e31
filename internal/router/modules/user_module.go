package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sensus-health/sensus-api/internal/container"
	handlers "github.com/sensus-health/sensus-api/internal/interface/http"
	"github.com/sensus-health/sensus-api/internal/interface/middleware"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// UserModule wires account and session routes.
// Public: POST /users/register, /users/login, /users/refresh
// Protected: logout, profile, password, avatar, export, account deletion.
type UserModule struct {
	Handler *handlers.UserHandler
	Stats   *handlers.StatsHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, stats *handlers.StatsHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Stats: stats, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Credential endpoints get the tightest per-IP limits.
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	users := rg.Group("/users")
	users.POST("/register", registerLimiter, m.Handler.Register)
	users.POST("/login", loginLimiter, m.Handler.Login)
	users.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := users.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/password", m.Handler.ChangePassword)
		auth.POST("/avatar", m.Handler.UploadAvatar)
		auth.GET("/export", m.Handler.ExportData)
		auth.GET("/stats", m.Stats.Overview)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
