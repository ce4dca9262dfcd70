package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shihanqu/discord-quote-bot/internal/service"
)

// mapServiceError translates service-layer errors into HTTP responses,
// preserving the service's error code and message in the envelope.
func mapServiceError(c echo.Context, err error) error {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	return Error(c, status, svcErr.Code, svcErr.Message)
}
