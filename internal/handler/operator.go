package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"guardline/internal/model"
	"guardline/internal/service"
)

// OperatorHandler exposes the operator read side.  Routes carrying it are
// registered behind RequireRole(OPERATOR).
type OperatorHandler struct {
	Query *service.OperatorQuery
}

func NewOperatorHandler(q *service.OperatorQuery) *OperatorHandler {
	return &OperatorHandler{Query: q}
}

// ListBookings handles GET /v1/operator/bookings: bookings joined with the
// submitting client's profile, newest first.  Optional filters: status,
// mine=true (only bookings assigned to the acting operator), limit.
func (h *OperatorHandler) ListBookings(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	f := model.BookingFilter{
		Status: model.Status(strings.TrimSpace(c.QueryParam("status"))),
	}
	if strings.EqualFold(c.QueryParam("mine"), "true") {
		f.OperatorID = act.ID
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	rows, err := h.Query.ListForOperator(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "count": len(rows)})
}
