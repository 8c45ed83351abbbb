package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storefront-availability-api/internal/models"
	appErrors "github.com/noah-isme/storefront-availability-api/pkg/errors"
	"github.com/noah-isme/storefront-availability-api/pkg/response"
)

// RequireRoles admits callers holding one of roles. SUPERADMIN is always admitted.
// It must run after JWT.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	allowed[models.RoleSuperAdmin] = struct{}{}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
