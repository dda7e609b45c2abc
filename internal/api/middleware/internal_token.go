package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
)

// InternalTokenAuth protects operator-only endpoints (metrics) with a
// shared static token. An empty configured token disables the endpoints.
func InternalTokenAuth(token string) gin.HandlerFunc {
	expected := strings.TrimSpace(token)

	return func(c *gin.Context) {
		if expected == "" {
			response.Fail(c, 404, "not found")
			c.Abort()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("X-Internal-Token"))
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.Fail(c, 401, "Non autorisé")
			c.Abort()
			return
		}

		c.Next()
	}
}
