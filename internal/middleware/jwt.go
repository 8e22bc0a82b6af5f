package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/logger"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated caller.
const ContextUserKey = "currentUser"

// TokenValidator turns a bearer token into a caller.
type TokenValidator interface {
	ValidateToken(token string) (*models.Caller, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "invalid authorization header"))
			c.Abort()
			return
		}

		caller, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, caller)
		c.Set(logger.UserIDKey, caller.UserID)
		c.Next()
	}
}

// CallerFromContext returns the caller stored by JWT.
func CallerFromContext(c *gin.Context) (*models.Caller, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	caller, ok := value.(*models.Caller)
	return caller, ok && caller != nil
}
