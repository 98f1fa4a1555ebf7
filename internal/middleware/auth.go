package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promptdir/backend/internal/utils"
	"github.com/promptdir/backend/pkg/response"
)

const (
	ContextSubject = "subject"
	ContextName    = "name"
	ContextRole    = "role"
)

// AuthRequired validates the bearer token and puts the caller identity into
// the request context. Requests without a verified identity are rejected.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.Abort()
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextName, claims.Name)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// AuthOptional resolves the caller identity when a bearer token is present
// but lets anonymous requests through. Used on public routes that record
// the caller when known (e.g. prompt execution).
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if claims, err := utils.ParseToken(parts[1]); err == nil {
					c.Set(ContextSubject, claims.Subject)
					c.Set(ContextName, claims.Name)
					c.Set(ContextRole, claims.Role)
				}
			}
		}
		c.Next()
	}
}

// AdminRequired checks for the admin role. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != "admin" {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "authorization header required")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization header format")
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return nil, false
	}

	return claims, true
}

// GetSubject returns the current caller's subject id, or "" when anonymous.
func GetSubject(c *gin.Context) string {
	if s, exists := c.Get(ContextSubject); exists {
		return s.(string)
	}
	return ""
}

// GetName returns the current caller's display name from the token.
func GetName(c *gin.Context) string {
	if n, exists := c.Get(ContextName); exists {
		return n.(string)
	}
	return ""
}

// GetRole returns the current caller's role.
func GetRole(c *gin.Context) string {
	if r, exists := c.Get(ContextRole); exists {
		return r.(string)
	}
	return ""
}
