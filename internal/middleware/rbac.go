package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
	"github.com/noah-isme/booking-api/pkg/response"
)

// RequireRoles admits only callers holding one of roles. It reads the claims set by JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		switch {
		case claims == nil:
			response.Error(c, appErrors.ErrUnauthorized)
		case !slices.Contains(roles, claims.Role):
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "requires role "+roleList(roles)))
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}

func roleList(roles []models.UserRole) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}
