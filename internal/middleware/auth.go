package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/handler"
	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	"github.com/jwalitptl/clinica-api/pkg/auth"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

type AuthMiddleware struct {
	tokens auth.TokenService
	users  repository.UserRepository
}

func NewAuthMiddleware(tokens auth.TokenService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Authenticate verifies the bearer token and sets the caller's identity
// in context. The user is re-resolved on every request so a deleted
// account invalidates its outstanding tokens immediately.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		user, err := m.users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			// Only a confirmed-missing user is an auth failure; a store
			// outage must not masquerade as a bad token.
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
				c.Abort()
				return
			}
			c.Error(fmt.Errorf("failed to resolve user: %w", err))
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

// RequireRoles gates a route to the listed roles
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := UserRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient permissions"))
		c.Abort()
	}
}

// UserID returns the authenticated caller's id from context
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// UserRole returns the authenticated caller's role from context
func UserRole(c *gin.Context) model.Role {
	if v, ok := c.Get(ContextUserRole); ok {
		if role, ok := v.(model.Role); ok {
			return role
		}
	}
	return ""
}
