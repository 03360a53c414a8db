package httpserver

import (
	"net/http"
	"strings"

	"market-api/internal/domain"
	"market-api/internal/httpserver/auth"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "userRole"
)

// authRequired verifies the bearer token and stores the caller's identity on
// the request context.
func authRequired(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// adminOnly gates a route to admin callers. It must run after authRequired.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func callerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
