package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/auth"
)

// userIDKey is the gin context key the auth middleware sets
const userIDKey = "userID"

// RequireAuth verifies the Bearer token and injects the user ID into the
// request context. Requests without a valid token are rejected.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.UnauthorizedError("authorization header required"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.UnauthorizedError("authorization header must be 'Bearer <token>'"))
			return
		}

		userID, err := tokens.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.UnauthorizedError("invalid or expired token"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireAuth
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
