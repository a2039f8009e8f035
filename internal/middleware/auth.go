// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeforge-backend/internal/models"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header",
			})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != string(models.UserRoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	})
}

// LicenseKeyRequired guards the terminal-facing endpoints. The execution
// agent never holds a user's bearer token; it presents the artifact's license
// key instead, which grants status reads and usage reporting only.
func LicenseKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-License-Key")
		if key == "" {
			key = c.Query("license_key")
		}
		if key == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "License key required",
			})
			c.Abort()
			return
		}

		c.Set("license_key", key)
		c.Next()
	}
}

func GetLicenseKeyFromContext(c *gin.Context) string {
	if key, exists := c.Get("license_key"); exists {
		if keyStr, ok := key.(string); ok {
			return keyStr
		}
	}
	return ""
}
