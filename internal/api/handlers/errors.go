package handlers

import (
	"net/http"

	"cascade-router/internal/api/models"
	"cascade-router/internal/model"

	"github.com/gin-gonic/gin"
)

// errorCode maps engine errors to API codes and HTTP statuses.
func errorCode(err error) (int, string) {
	switch {
	case model.IsConfigError(err):
		return http.StatusBadRequest, "INVALID_CONFIG"
	case model.IsIntegrityError(err):
		return http.StatusUnprocessableEntity, "DATA_INTEGRITY"
	default:
		return http.StatusInternalServerError, "ROUTING_ERROR"
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func abortWithEngineError(c *gin.Context, err error) {
	status, code := errorCode(err)
	abortWithError(c, status, code, err.Error())
}
