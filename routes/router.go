package routes

import (
	"net/http"
	"time"

	"tasknotes/backend/database"
	"tasknotes/backend/middleware"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// SetupRouter builds the gin engine with every route under /api.
func SetupRouter(
	cfg RouterConfig,
	log *zap.Logger,
	db *database.Database,
	authService services.AuthServiceInterface,
	noteService services.NoteServiceInterface,
	wsService services.WebSocketServiceInterface,
) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
	)

	api := router.Group("/api")

	// The websocket feed is long lived and stays outside the request timeout.
	RegisterWebSocketRoutes(api, authService, wsService)

	timed := api.Group("")
	timed.Use(middleware.Timeout(cfg.RequestTimeout))
	RegisterHealthRoutes(timed, db)
	RegisterAuthRoutes(timed, db, authService)

	protected := timed.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	RegisterNoteRoutes(protected, db, noteService)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}
