package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the resolved client address; the rate limiter and the
// login lockout key on it.
const CtxRealIPKey = "real_ip"

// RealIP resolves the client address behind the edge proxy and stores it in
// the Gin context. CF-Connecting-IP wins over X-Forwarded-For (left-most
// hop); anything unparsable falls back to the socket peer.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := forwardedIP(c)
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}

func forwardedIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
