package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensus-health/sensus-api/pkg/helpers"
)

func authRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(nil, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuthRejectsMissingToken(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	r := authRouter(jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_error")
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	r := authRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	other := helpers.NewJWTManager("different", "refresh", time.Hour, 24*time.Hour)
	tok, _, err := other.GenerateAccessToken("u1", "u1@example.com", "sid-1")
	require.NoError(t, err)

	r := authRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsValidBearerToken(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	tok, _, err := jwt.GenerateAccessToken("u1", "u1@example.com", "sid-1")
	require.NoError(t, err)

	r := authRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthAcceptsCookieFallback(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	tok, _, err := jwt.GenerateAccessToken("u2", "u2@example.com", "sid-2")
	require.NoError(t, err)

	r := authRouter(jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())
}
