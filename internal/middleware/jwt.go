// Package middleware holds the gin middleware shared by the API: request
// logging, CORS, service-token validation, role enforcement.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/olimp-shop/backend/internal/auth"
	"github.com/olimp-shop/backend/pkg/response"
)

// ContextRole is the gin context key for the caller's service role.
const ContextRole = "service_role"

// JWT returns a middleware that validates the bearer token and stores the
// caller's role in the context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
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
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
