package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"daybook/internal/auth"
)

const claimsContextKey = "sessionClaims"

// authMiddleware gates every diary route. A missing or non-Bearer header is
// 401; a token that fails verification (malformed, bad signature, expired)
// is 403. Verified claims are stored on the gin context for handlers.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		claims, err := h.tokens.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// currentClaims returns the verified session claims, aborting with 401 if the
// middleware never ran. Handlers registered behind authMiddleware always get
// a non-nil result.
func currentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsContextKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
	return nil
}
