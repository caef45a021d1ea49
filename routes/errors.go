package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tasknotes/backend/middleware"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByKind = map[services.Kind]int{
	services.KindValidation:     http.StatusBadRequest,
	services.KindConflict:       http.StatusBadRequest,
	services.KindAuthentication: http.StatusUnauthorized,
	services.KindInvalidToken:   http.StatusUnauthorized,
	services.KindExpiredToken:   http.StatusUnauthorized,
	services.KindNotFound:       http.StatusNotFound,
	services.KindUnexpected:     http.StatusInternalServerError,
}

// respondError writes the {"error": message} body for err. Unexpected errors
// are logged and never leave the server.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := statusByKind[kind]

	if kind == services.KindUnexpected {
		zap.L().Error("request failed",
			zap.String("id", middleware.GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": errorMessage(err)})
}

func errorMessage(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// bindJSON decodes the request body strictly and reports decoding problems
// as validation errors.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verr *services.ValidationError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &services.ValidationError{Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String()}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &services.ValidationError{Field: field, Message: "is not allowed"}
	case errors.As(err, &typeErr), errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &services.ValidationError{Message: "request body must be a JSON object"}
	default:
		return &services.ValidationError{Message: "invalid request body"}
	}
}
