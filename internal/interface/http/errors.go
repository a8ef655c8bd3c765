package handlers

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	userapp "github.com/foundly/foundly-api/internal/application"
	"github.com/foundly/foundly-api/pkg/response"
)

// writeServiceError maps directory errors onto HTTP statuses. Anything
// outside the domain taxonomy is an infrastructure failure: 500, plus a
// sentry report when the SDK is initialized.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userapp.ErrEmailExists):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, userapp.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	default:
		sentry.CaptureException(err)
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
