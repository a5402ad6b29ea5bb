package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/schemas"
	"github.com/badili/odk-dashboard3/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh copy of the given
// request struct, validates it, and stores the result in the context for the
// handler to pick up.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var obj T
		if err := c.ShouldBindJSON(&obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		if err := utils.GetValidator().Validate.Struct(&obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey, &obj)
		c.Next()
	}
}
