package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
)

// ClaimsKey is the gin context key holding the verified admin claims.
const ClaimsKey = "admin_claims"

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*admin.Claims, error)
}

// RequireAdmin rejects requests without a valid bearer token.
func RequireAdmin(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "Missing bearer token")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// AdminClaims returns the claims stored by RequireAdmin.
func AdminClaims(c *gin.Context) (*admin.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*admin.Claims)
	return claims, ok
}
