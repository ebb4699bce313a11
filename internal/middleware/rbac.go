package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/attendly/attendance-api/internal/models"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
	"github.com/attendly/attendance-api/pkg/response"
)

// RequireRoles allows only the listed roles through. An employee is also
// allowed onto routes whose :id parameter is their own subject id when
// allowSelf is requested via AllowSelf.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return rbac(false, roles...)
}

// AllowSelf behaves like RequireRoles but additionally admits the employee
// whose id matches the :id route parameter.
func AllowSelf(roles ...models.Role) gin.HandlerFunc {
	return rbac(true, roles...)
}

func rbac(allowSelf bool, roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf && claims.Role == models.RoleEmployee {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.SubjectID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
