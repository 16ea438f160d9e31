package middleware

import (
	"bytes"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/sensus-health/sensus-api/pkg/response"
)

// Attack signatures scanned against the query string and JSON request body.
// This is heuristic defense-in-depth, not a security guarantee: the store is
// accessed through parameterized queries regardless.
var attackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script[^>]*>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon(load|error|click|mouseover|focus)\s*=`),
	regexp.MustCompile(`(?i)\b(union\s+select|insert\s+into|delete\s+from|drop\s+table)\b`),
	regexp.MustCompile(`(?i)('\s*(or|and)\s+'?\d+'?\s*=\s*'?\d+)`),
	regexp.MustCompile(`(?i)<\s*iframe[^>]*>`),
}

const maxScannedBody = 1 << 20 // 1 MiB

// Sanitize rejects requests whose query string or body matches a known
// attack signature. Only the first maxScannedBody bytes are scanned; the
// unread remainder is stitched back so large payloads (avatar uploads)
// reach handlers intact.
func Sanitize() gin.HandlerFunc {
	return func(c *gin.Context) {
		if suspicious(c.Request.URL.RawQuery) {
			response.Abort(c, http.StatusBadRequest, response.CodeValidation, "suspicious request payload", nil)
			return
		}

		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxScannedBody))
			if err != nil {
				response.Abort(c, http.StatusBadRequest, response.CodeValidation, "unreadable request body", nil)
				return
			}
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
			if suspicious(string(body)) {
				response.Abort(c, http.StatusBadRequest, response.CodeValidation, "suspicious request payload", nil)
				return
			}
		}
		c.Next()
	}
}

func suspicious(s string) bool {
	if s == "" {
		return false
	}
	for _, re := range attackPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
