package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/uthos/internal/api/middleware"
	"github.com/timmy/uthos/internal/service"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

func done(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": message})
}

// fail writes err in the error envelope with a status chosen by its kind.
func fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrExpired):
		status, code = http.StatusGone, "link_expired"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		middleware.GetLogger(c).WithError(err).Error("request failed")
		message = "internal server error"
	}
	middleware.AbortError(c, status, code, message)
}

func badRequest(c *gin.Context, message string) {
	middleware.AbortError(c, http.StatusBadRequest, "invalid_request", message)
}
