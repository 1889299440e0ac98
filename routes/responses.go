package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tasklist/backend/middleware"
	"tasklist/backend/models"
	"tasklist/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// authenticated hands the request principal to next, or answers 401 when the
// auth stage did not run.
func authenticated(next func(*gin.Context, models.Principal)) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		next(c, principal)
	}
}

// bindBody decodes a JSON or form body into obj. An empty body is empty input.
// A JSON value of the wrong type is reported against its field.
func bindBody(c *gin.Context, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body."})
			return false
		}
		verr := &services.ValidationError{}
		verr.Add(typeErr.Field, "Incorrect type, received "+typeErr.Value+".")
		respondError(c, verr)
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

// bindTaskInput reads a task body. JSON keeps an explicit null apart from a
// missing key; form bodies only carry strings.
func bindTaskInput(c *gin.Context) (services.TaskInput, bool) {
	var input services.TaskInput
	if c.ContentType() == binding.MIMEJSON {
		return input, bindBody(c, &input)
	}

	fields := map[string]*services.OptionalString{
		"title":       &input.Title,
		"description": &input.Description,
		"status":      &input.Status,
	}
	for key, field := range fields {
		if value, ok := c.GetPostForm(key); ok {
			*field = services.Some(value)
		}
	}
	return input, true
}

func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input.", "fields": verr.Fields})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found."})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired."})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
