package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/dto"
)

// RoleKey is the gin context key holding the session role.
const RoleKey = "session_role"

// SessionRequired rejects requests when no session token is stored. The
// platform stays the authority on token validity; this gate only avoids
// pointless upstream calls from logged-out clients.
func SessionRequired(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := sessions.Read()
		if state.Tokens.Empty() {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.CodeUnauthorized, "You are not logged in."))
			return
		}
		c.Set(RoleKey, state.Role)
		c.Next()
	}
}

// RoleRequired restricts a route group to one partner role.
func RoleRequired(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := c.Get(RoleKey)
		if !ok || got.(identity.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.CodeForbidden, "This area is not available for your account."))
			return
		}
		c.Next()
	}
}

// SessionRole returns the role set by SessionRequired.
func SessionRole(c *gin.Context) identity.Role {
	if got, ok := c.Get(RoleKey); ok {
		if r, ok := got.(identity.Role); ok {
			return r
		}
	}
	return ""
}
