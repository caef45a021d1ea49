package routes

import (
	"net/http"

	"tasknotes/backend/database"
	"tasknotes/backend/middleware"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
)

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	// Collection endpoints with query parameters
	group.GET("/notes", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })

	// Resource-specific endpoints
	group.GET("/notes/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	notes, err := noteService.ListNotes(db.WithContext(c.Request.Context()), userID, c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	note, err := noteService.GetNoteById(db.WithContext(c.Request.Context()), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	var input services.CreateNoteInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	note, err := noteService.CreateNote(db.WithContext(c.Request.Context()), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	var patch services.NotePatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}

	note, err := noteService.UpdateNote(db.WithContext(c.Request.Context()), userID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrInvalidToken)
		return
	}

	if err := noteService.DeleteNote(db.WithContext(c.Request.Context()), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
