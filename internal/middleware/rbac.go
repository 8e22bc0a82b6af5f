package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// RBAC enforces role-based access control for routes. Unknown roles are rejected as invalid.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		if !caller.Role.Valid() {
			response.Error(c, appErrors.ErrInvalidRole)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[caller.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
	}
}

// AnyRole allows every known role.
func AnyRole() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleFaculty, models.RoleStudent)
}
