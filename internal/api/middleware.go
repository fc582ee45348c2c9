package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calmadrigal/space-reservation-backend/internal/auth"
)

// RequireAdmin ensures the authenticated actor holds the ADMIN role.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
