package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casino401k-backend/internal/services"
)

var (
	errMissingToken = errors.New("missing session token")
	errBadAuthShape = errors.New("authorization header must carry a Bearer token")
)

// AuthMiddleware validates the session token and stores its claims on the
// request context for the ledger and round handlers downstream.
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := sessionToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}

// sessionToken pulls the token from the Authorization header, or from the
// token query parameter on the websocket upgrade path, where browser
// clients cannot set headers.
func sessionToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return "", errBadAuthShape
		}
		return token, nil
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errMissingToken
}

// UserID reads the authenticated user from the request context.
func UserID(c *gin.Context) string {
	value, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	userID, _ := value.(string)
	return userID
}
