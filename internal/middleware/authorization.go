package middleware

import (
	"crypto/subtle"
	"net/http"

	"poap_quiz_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminSecret guards admin routes with a shared secret carried in the
// X-Admin-Secret header.
func AdminSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		if secret == "" {
			log.Error("admin secret is not configured, rejecting request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		provided := c.GetHeader("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
