package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// No backing services wired: postgres and redis report "not configured",
	// which counts as a critical failure.
	h := NewHealthHandler(nil, nil, nil, "test")
	r.GET("/health", h.Live)
	r.GET("/health/detailed", h.Detailed)
	return r
}

func TestHealthLiveAlwaysOK(t *testing.T) {
	r := healthRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data.Status)
}

func TestHealthDetailedDegradedIsFailureEnvelope(t *testing.T) {
	r := healthRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env struct {
		Success      bool   `json:"success"`
		Error        string `json:"error"`
		ErrorDetails struct {
			Status string                 `json:"status"`
			Checks map[string]interface{} `json:"checks"`
		} `json:"error_details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "service_unavailable", env.Error)
	assert.Equal(t, "unavailable", env.ErrorDetails.Status)
	assert.Contains(t, env.ErrorDetails.Checks, "postgres")
	assert.Contains(t, env.ErrorDetails.Checks, "redis")
}
