// Package middleware provides the gin middleware shared by all routes.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/utils"
)

// InjectTrace attaches a fresh trace id to the request context and echoes it
// back to the client in the X-Trace-Id header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey, traceId)
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
