package routes

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tasklist/backend/models"
	"tasklist/backend/services"
	"tasklist/backend/testutils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	router := gin.New()
	RegisterHealthRoutes(router, stubPinger{})
	w := performRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	router = gin.New()
	RegisterHealthRoutes(router, stubPinger{err: errors.New("connection refused")})
	w = performRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth_SQLite(t *testing.T) {
	router := setupRouter(t)
	w := performRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingTaskService struct {
	services.TaskServiceInterface
}

func (failingTaskService) GetTasks(context.Context, models.Principal, string) ([]models.Task, error) {
	return nil, errors.New("connection reset")
}

func TestTaskRoutes_InternalError(t *testing.T) {
	router := gin.New()
	group := router.Group("/api")
	group.Use(testutils.WithPrincipal(models.Principal{UserID: uuid.New(), Username: "testuser1"}))
	RegisterTaskRoutes(group, failingTaskService{})

	w := performRequest(router, http.MethodGet, "/api/tasks/", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestTaskRoutes_NoPrincipal(t *testing.T) {
	router := gin.New()
	RegisterTaskRoutes(router.Group("/api"), failingTaskService{})

	w := performRequest(router, http.MethodGet, "/api/tasks/", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
