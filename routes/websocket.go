package routes

import (
	"tasknotes/backend/middleware"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes sets up the live note feed. The token may be given
// as ?token= since browsers cannot set headers on the upgrade request.
func RegisterWebSocketRoutes(group *gin.RouterGroup, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	group.GET("/ws", middleware.WebSocketAuthMiddleware(authService), func(c *gin.Context) {
		userID, ok := middleware.GetUserID(c)
		if !ok {
			respondError(c, services.ErrInvalidToken)
			return
		}
		wsService.HandleConnection(c, userID)
	})
}
