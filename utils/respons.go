package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondDomainError -> memetakan taksonomi error domain ke status HTTP.
// Error di luar taksonomi dianggap kegagalan internal.
func RespondDomainError(c *gin.Context, err error) {
	var (
		conflict   *ConflictError
		precond    *PreconditionError
		limit      *LimitExceededError
		transition *InvalidTransitionError
		notFound   *NotFoundError
	)

	switch {
	case errors.As(err, &conflict):
		RespondError(c, http.StatusConflict, err)
	case errors.As(err, &precond):
		RespondError(c, http.StatusPreconditionFailed, err)
	case errors.As(err, &limit):
		RespondError(c, http.StatusUnprocessableEntity, err)
	case errors.As(err, &transition):
		RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFound):
		RespondError(c, http.StatusNotFound, err)
	default:
		RespondError(c, http.StatusInternalServerError, err)
	}
}
