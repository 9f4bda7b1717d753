package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swiftcheck/backend/internal/auth"
	"github.com/swiftcheck/backend/pkg/response"
)

const (
	// ContextRole is the key for the session role in gin context.
	ContextRole = "session_role"
)

// AdminJWT returns a middleware that validates the session token and requires
// the admin role.
func AdminJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if claims.Role != auth.RoleAdmin {
			response.Unauthorized(c, "admin session required")
			c.Abort()
			return
		}
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
