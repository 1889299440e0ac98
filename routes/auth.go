package routes

import (
	"net/http"
	"strings"

	"tasklist/backend/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

// RegisterAuthRoutes mounts the account endpoints. Extra handlers, such as a
// rate limiter, run before each of them.
func RegisterAuthRoutes(group *gin.RouterGroup, authService services.AuthServiceInterface, handlers ...gin.HandlerFunc) {
	auth := group.Group("/auth", handlers...)
	{
		auth.POST("/register/", func(c *gin.Context) { Register(c, authService) })
		auth.POST("/login/", func(c *gin.Context) { Login(c, authService) })
		auth.POST("/token/refresh/", func(c *gin.Context) { RefreshToken(c, authService) })
	}
}

func Register(c *gin.Context, authService services.AuthServiceInterface) {
	var input services.RegisterInput
	if !bindBody(c, &input) {
		return
	}

	user, tokens, err := authService.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    user,
		"tokens":  tokens,
	})
}

func Login(c *gin.Context, authService services.AuthServiceInterface) {
	var request loginRequest
	if !bindBody(c, &request) {
		return
	}

	verr := &services.ValidationError{}
	if strings.TrimSpace(request.Username) == "" {
		verr.Add("username", "This field is required.")
	}
	if request.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if len(verr.Fields) > 0 {
		respondError(c, verr)
		return
	}

	user, tokens, err := authService.Login(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"user":    user,
		"tokens":  tokens,
	})
}

func RefreshToken(c *gin.Context, authService services.AuthServiceInterface) {
	var request refreshRequest
	if !bindBody(c, &request) {
		return
	}
	if request.Refresh == "" {
		verr := &services.ValidationError{}
		verr.Add("refresh", "This field is required.")
		respondError(c, verr)
		return
	}

	access, err := authService.Refresh(c.Request.Context(), request.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}
