package middleware

import (
	"net/http"

	"tasklist/backend/models"
	"tasklist/backend/services"
	"tasklist/backend/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey   = "userID"
	usernameKey = "username"
)

// AuthMiddleware resolves the bearer access token to a principal and stores
// it in the gin context. Requests without a valid token stop here with 401.
func AuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": token.ErrInvalidToken.Error()})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)

		c.Next()
	}
}

// GetPrincipal returns the principal stored by AuthMiddleware.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return models.Principal{}, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return models.Principal{}, false
	}
	return models.Principal{UserID: userID, Username: c.GetString(usernameKey)}, true
}
