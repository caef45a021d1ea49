package routes

import (
	"net/http"

	"tasknotes/backend/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterHealthRoutes(group *gin.RouterGroup, db *database.Database) {
	group.GET("/health", func(c *gin.Context) { Health(c, db) })
}

func Health(c *gin.Context, db *database.Database) {
	if err := db.Ping(c.Request.Context()); err != nil {
		zap.L().Error("database health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "error",
			"message":  "API is running but database connection failed",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "API is running",
		"database": "connected",
	})
}
