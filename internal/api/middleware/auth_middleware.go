package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sheasmith19/ezapp/internal/auth"
	"github.com/sheasmith19/ezapp/internal/errcode"
)

const userIDKey = "userID"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// AbortUnauthorized stops the chain with a 401 and the unauthorized error code.
func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
}

// AuthMiddleware verifies the bearer token and stores its subject as the user ID.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			AbortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortUnauthorized(c)
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			LoggerFromContext(c).Info("rejected bearer token", slog.Any("error", err))
			AbortUnauthorized(c)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(slogLoggerKey, LoggerFromContext(c).With(slog.String("user_id", claims.Subject)))
		c.Next()
	}
}

// UserIDFromContext returns the authenticated subject.
func UserIDFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
