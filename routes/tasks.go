package routes

import (
	"net/http"

	"tasklist/backend/models"
	"tasklist/backend/services"

	"github.com/gin-gonic/gin"
)

func RegisterTaskRoutes(group *gin.RouterGroup, taskService services.TaskServiceInterface) {
	group.GET("/tasks/", authenticated(func(c *gin.Context, p models.Principal) { GetTasks(c, p, taskService) }))
	group.POST("/tasks/", authenticated(func(c *gin.Context, p models.Principal) { CreateTask(c, p, taskService) }))
	group.GET("/tasks/:id/", authenticated(func(c *gin.Context, p models.Principal) { GetTaskById(c, p, taskService) }))
	group.PUT("/tasks/:id/", authenticated(func(c *gin.Context, p models.Principal) { UpdateTask(c, p, taskService) }))
	group.DELETE("/tasks/:id/", authenticated(func(c *gin.Context, p models.Principal) { DeleteTask(c, p, taskService) }))
	group.POST("/tasks/:id/complete/", authenticated(func(c *gin.Context, p models.Principal) { MarkTaskComplete(c, p, taskService) }))
	group.POST("/tasks/:id/incomplete/", authenticated(func(c *gin.Context, p models.Principal) { MarkTaskIncomplete(c, p, taskService) }))
}

func GetTasks(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	tasks, err := taskService.GetTasks(c.Request.Context(), principal, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func CreateTask(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	input, ok := bindTaskInput(c)
	if !ok {
		return
	}

	task, err := taskService.CreateTask(c.Request.Context(), principal, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func GetTaskById(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	task, err := taskService.GetTaskById(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	input, ok := bindTaskInput(c)
	if !ok {
		return
	}

	task, err := taskService.UpdateTask(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	if err := taskService.DeleteTask(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully."})
}

func MarkTaskComplete(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	task, err := taskService.MarkTaskComplete(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task marked as complete!", "task": task})
}

func MarkTaskIncomplete(c *gin.Context, principal models.Principal, taskService services.TaskServiceInterface) {
	task, err := taskService.MarkTaskIncomplete(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task marked as incomplete!", "task": task})
}
