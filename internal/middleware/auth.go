package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/hidaaya-golang/internal/auth"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

var errNoToken = errors.New("no bearer token")

// TokenValidator checks an access token.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RoleLookup reads a user's current role, so role changes apply without re-login.
type RoleLookup interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth requires a valid Bearer token and stores the user id in the context.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, tokens)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, errNoToken) {
				msg = "Authorization header required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

// OptionalAuth attaches the user id when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, tokens); err == nil {
			c.Set(ContextUserID, claims.Subject)
		}
		c.Next()
	}
}

// AdminOnly must run after Auth. It looks the user up and requires the admin role.
func AdminOnly(users RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from Auth
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (Auth must run first)"})
			return
		}

		// 2. Query the user's current role
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}

		// 3. Check permission
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: admin role required"})
			return
		}

		// 4. Success! Add role to context and proceed.
		c.Set(ContextUserRole, string(user.Role))
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

func bearerClaims(c *gin.Context, tokens TokenValidator) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, auth.ErrInvalidToken
	}
	return tokens.Validate(parts[1])
}
