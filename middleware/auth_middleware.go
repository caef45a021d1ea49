package middleware

import (
	"errors"
	"net/http"

	"tasknotes/backend/services"
	"tasknotes/backend/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDKey = "userID"

func AuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractBearer(c)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		authenticate(c, authService, tokenString)
	}
}

func authenticate(c *gin.Context, authService services.AuthServiceInterface, tokenString string) {
	userID, err := authService.ValidateToken(tokenString)
	if err != nil {
		abortUnauthorized(c, err)
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func abortUnauthorized(c *gin.Context, err error) {
	message := "Invalid token"
	switch {
	case errors.Is(err, token.ErrAuthHeaderMissing):
		message = "Authentication required"
	case errors.Is(err, token.ErrInvalidAuthFormat):
		message = "Authorization header format must be Bearer {token}"
	case services.KindOf(err) == services.KindExpiredToken:
		message = "Token expired"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// GetUserID returns the caller resolved by AuthMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
