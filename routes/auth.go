package routes

import (
	"net/http"

	"tasknotes/backend/database"
	"tasknotes/backend/middleware"
	"tasknotes/backend/models"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
)

type authResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func RegisterAuthRoutes(group *gin.RouterGroup, db *database.Database, authService services.AuthServiceInterface) {
	auth := group.Group("/auth")
	{
		auth.POST("/register", func(c *gin.Context) { Register(c, db, authService) })
		auth.POST("/login", func(c *gin.Context) { Login(c, db, authService) })
		auth.GET("/me", middleware.AuthMiddleware(authService), func(c *gin.Context) { GetMe(c, db, authService) })
	}
}

func Register(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request services.RegisterInput
	if err := bindJSON(c, &request); err != nil {
		respondError(c, err)
		return
	}

	user, token, err := authService.Register(db.WithContext(c.Request.Context()), request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{User: user.Public(), Token: token})
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request services.LoginInput
	if err := bindJSON(c, &request); err != nil {
		respondError(c, err)
		return
	}

	user, token, err := authService.Login(db.WithContext(c.Request.Context()), request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{User: user.Public(), Token: token})
}

func GetMe(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	user, err := authService.GetCurrentUser(db.WithContext(c.Request.Context()), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
