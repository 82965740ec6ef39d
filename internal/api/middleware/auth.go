package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const userContextKey = "user"

// UserAuthenticator resolves an API key to a user
type UserAuthenticator interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
}

// AuthMiddleware authenticates requests carrying "Authorization: Bearer <api key>"
func AuthMiddleware(users UserAuthenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		apiKey, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(apiKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		user, err := users.GetByAPIKey(c.Request.Context(), strings.TrimSpace(apiKey))
		if err != nil {
			var unauthorized *errors.ErrUnauthorized
			if stderrors.As(err, &unauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logger.Error("Failed to authenticate request", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetUserFromContext returns the authenticated user
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}

// SetUser stores the authenticated user on the context
func SetUser(c *gin.Context, user *domain.User) {
	c.Set(userContextKey, user)
}
