package testutils

import (
	"net/http"

	"tasklist/backend/models"

	"github.com/gin-gonic/gin"
)

func GetTestGinContext(w http.ResponseWriter, req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

// WithPrincipal returns a middleware that authenticates every request as
// principal, standing in for the bearer-token middleware in handler tests.
func WithPrincipal(principal models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", principal.UserID)
		c.Set("username", principal.Username)
		c.Next()
	}
}
