package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
	"github.com/noah-isme/booking-api/pkg/response"
)

// ContextUserKey is the gin key holding the caller's *models.JWTClaims.
const ContextUserKey = "currentUser"

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT rejects requests without a valid bearer token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return authenticate(tokens, true)
}

// OptionalJWT attaches the caller when a valid token is sent and otherwise treats the request as anonymous.
func OptionalJWT(tokens TokenValidator) gin.HandlerFunc {
	return authenticate(tokens, false)
}

func authenticate(tokens TokenValidator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		var claims *models.JWTClaims
		if err == nil {
			claims, err = tokens.ValidateToken(token)
		}
		if err != nil {
			if required {
				response.Error(c, err)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

// Claims returns the authenticated caller, or nil.
func Claims(c *gin.Context) *models.JWTClaims {
	if v, ok := c.Get(ContextUserKey); ok {
		claims, _ := v.(*models.JWTClaims)
		return claims
	}
	return nil
}
