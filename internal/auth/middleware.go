package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// Middleware validates the bearer token and stores the caller identity in
// the gin context. The token is read from the Authorization header, or from
// the `token` query parameter for websocket handshakes.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		header := c.GetHeader("Authorization")
		if header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityContextKey, Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only", "kind": "authorization"})
			return
		}
		c.Next()
	}
}

// IdentityFromContext extracts the authenticated identity set by Middleware.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	val, ok := c.Get(identityContextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok
}

// SetIdentity stores an identity in the context. Exposed for tests.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityContextKey, id)
}
