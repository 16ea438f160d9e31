package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Sanitize())
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSanitizePassesCleanRequests(t *testing.T) {
	r := sanitizeRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"content":"hoy fue un buen día","mood":8}`))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeRejectsAttackPayloads(t *testing.T) {
	r := sanitizeRouter()

	bodies := []string{
		`{"content":"<script>alert(1)</script>"}`,
		`{"content":"x' OR '1'='1"}`,
		`{"content":"SELECT 1; DROP TABLE users"}`,
		`{"url":"javascript:alert(1)"}`,
		`{"html":"<iframe src=evil>"}`,
	}
	for _, body := range bodies {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "validation_error")
	}
}

func TestSanitizeRejectsAttackQueryString(t *testing.T) {
	r := sanitizeRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/echo?q=%3Cscript%3Ealert(1)%3C/script%3E", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizePassesOversizedBodiesThroughIntact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Sanitize())
	var seen int
	r.POST("/upload", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		seen = len(b)
		c.Status(http.StatusOK)
	})

	// Twice the scan window: only the first half is scanned, but the
	// handler must still receive every byte.
	body := bytes.Repeat([]byte("a"), 2*maxScannedBody)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, len(body), seen)
}

func TestSanitizeRebuffersBodyForHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Sanitize())
	var seen string
	r.POST("/echo", func(c *gin.Context) {
		b, _ := c.GetRawData()
		seen = string(b)
		c.Status(http.StatusOK)
	})

	body := `{"mood":5}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, seen)
}
