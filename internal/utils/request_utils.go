// Package utils provides utility functions to support various operations within the application.
package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the
// HTTP response with the provided status code.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "debug", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the
// specified status code and the user-facing error details. The internal error
// is only logged, never echoed to the client.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFields(c, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.JSON(statusCode, &schemas.ErrorDTO{Error: *customErr})
}
