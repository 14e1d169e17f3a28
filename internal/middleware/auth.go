package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	// UserIDContextKey is the gin context key holding the authenticated user ID.
	UserIDContextKey = "user_id"
)

// AuthConfig controls which requests the Auth middleware lets through
// without a token.
type AuthConfig struct {
	// PublicPaths lists exact request paths that skip authentication.
	PublicPaths []string
}

// Auth returns a gin middleware that authenticates requests with a Bearer
// token issued by the given jwt service. Requests to public paths pass
// through untouched. On success the token's user ID is stored in the
// gin.Context under UserIDContextKey.
func Auth(jwtSvc jwt.Service, cfg AuthConfig) gin.HandlerFunc {
	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader(authorizationHeader))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}

		parsed, err := jwtSvc.ValidateAndParse(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(UserIDContextKey, parsed.UserID)
		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from the gin.Context.
// Returns an empty string if the request was not authenticated.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// unauthorized aborts the request with a 401 JSON envelope.
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": msg,
		"data":    nil,
	})
}
