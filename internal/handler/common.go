package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"guardline/internal/model"
	"guardline/internal/service"
	"guardline/internal/store"
)

// actor extracts the authenticated identity placed in context by the JWT
// middleware.
func actor(c echo.Context) (service.Actor, bool) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" {
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Role: role}, true
}

// fail maps a service or store error onto the HTTP error envelope.  Business
// errors keep their message; everything unclassified becomes an opaque 500.
func fail(c echo.Context, err error) error {
	var inv *model.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrSessionExpired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrCodeExists), errors.Is(err, store.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &inv):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
