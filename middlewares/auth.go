package middlewares

import (
	"net/http"
	"strings"

	"acai-store/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AdminIDKey    = "admin_id"
	AdminLoginKey = "admin_login"
	RequestIDKey  = "request_id"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(AdminLoginKey, claims.Login)
		c.Next()
	}
}

// RequestIDMiddleware echoes X-Request-ID, generating one when absent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
