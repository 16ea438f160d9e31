package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sensus-health/sensus-api/internal/interface/middleware"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.POST("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func TestRegistryAppliesMiddlewareInOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var order []string
	tag := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	reg := NewRegistry(gin.New())
	reg.Use(tag("limiter"))
	reg.Use(tag("sanitize"))
	reg.Add(pingModule{})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ping", nil)
	reg.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"limiter", "sanitize"}, order)
}

func TestRegistryOverLimitRequestSkipsBodyScan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reject := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTooManyRequests)
	}

	reg := NewRegistry(gin.New())
	reg.Use(reject)
	reg.Use(middleware.Sanitize())
	reg.Add(pingModule{})
	reg.RegisterAll()

	// A payload the scanner would reject must still surface 429: the
	// limiter runs first and the scan is never paid.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ping", strings.NewReader(`{"x":"<script>alert(1)</script>"}`))
	reg.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
