package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meowfish/shop-api/internal/auth"
)

const (
	errCouldNotValidate = "Could not validate credentials"
	errManagersOnly     = "Unauthorized. Only managers can access this endpoint."

	// gin context keys set by Auth.
	ClaimsKey = "claims"
	TokenKey  = "token"
)

// tokenValidator is the subset of the token service the middleware needs.
type tokenValidator interface {
	Validate(raw string) (*auth.Claims, error)
}

// Auth validates a Bearer JWT and stores the claims and raw token in the gin
// context. All failure modes get the same 401.
func Auth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthenticated(c)
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.Validate(raw)
		if err != nil {
			unauthenticated(c)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, raw)

		// Logs emitted downstream carry the caller's identity.
		c.Request = c.Request.WithContext(auth.WithSubject(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RequireManager runs after Auth and rejects callers whose token does not
// carry the manager claim. Guards every mutating product route.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			unauthenticated(c)
			return
		}
		if !claims.IsManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errManagersOnly})
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func unauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errCouldNotValidate})
}
