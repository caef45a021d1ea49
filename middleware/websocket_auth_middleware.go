package middleware

import (
	"tasknotes/backend/services"
	"tasknotes/backend/utils/token"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware also accepts the token as a query parameter,
// since browsers cannot set headers on the upgrade request.
func WebSocketAuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		authenticate(c, authService, tokenString)
	}
}
