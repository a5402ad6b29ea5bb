package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/utils"
)

// LogRequest logs every incoming request with its method and path.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogMessageWithFields(c, "info", "Request received: "+c.Request.Method+" "+c.Request.URL.Path)
		c.Next()
	}
}
