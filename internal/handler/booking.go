package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"guardline/internal/model"
	"guardline/internal/service"
)

// BookingHandler exposes booking submission, lookup, listing and status
// transitions.  All routes sit behind the JWT middleware; the acting
// identity always comes from the token, never from the body.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

// submitReq mirrors the public booking-request body.  Unknown fields are
// ignored by encoding/json; everything required is validated by the
// booking service before any store is touched.
type submitReq struct {
	ServiceType string `json:"service_type"`
	Pickup      struct {
		Address string  `json:"address"`
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
	} `json:"pickup"`
	Destination struct {
		Address string  `json:"address"`
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
	} `json:"destination"`
	ScheduledAt   string `json:"scheduled_at"`
	DurationHours int    `json:"duration_hours"`
	Personnel     struct {
		Protectors int `json:"protectors"`
		Escorts    int `json:"escorts"`
	} `json:"personnel"`
	Vehicles struct {
		ArmoredSUV int `json:"armoredSuv"`
		Sedan      int `json:"sedan"`
	} `json:"vehicles"`
	Contact struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"contact"`
}

type statusReq struct {
	Status string `json:"status"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.Submit(ctx, service.SubmitRequest{
		ClientID:      act.ID,
		ServiceType:   req.ServiceType,
		Pickup:        model.Stop{Address: req.Pickup.Address, Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		Destination:   model.Stop{Address: req.Destination.Address, Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		ScheduledAt:   req.ScheduledAt,
		DurationHours: req.DurationHours,
		Personnel:     model.Personnel{Protectors: req.Personnel.Protectors, Escorts: req.Personnel.Escorts},
		Vehicles:      model.Vehicles{ArmoredSUV: req.Vehicles.ArmoredSUV, Sedan: req.Vehicles.Sedan},
		Contact:       model.Contact{Name: req.Contact.Name, Phone: req.Contact.Phone},
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": b})
}

// GetByCode handles GET /v1/bookings/code/:code.
func (h *BookingHandler) GetByCode(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return fail(c, err)
	}
	if act.Role != model.RoleOperator && b.ClientID != act.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}

// List handles GET /v1/bookings.  Clients see their own bookings; operators
// may filter by status or client.
func (h *BookingHandler) List(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	f := model.BookingFilter{
		Status:   model.Status(strings.TrimSpace(c.QueryParam("status"))),
		ClientID: strings.TrimSpace(c.QueryParam("client_id")),
	}
	bs, err := h.Bookings.List(ctx, f, act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": bs, "count": len(bs)})
}

// UpdateStatus handles POST /v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.Transition(ctx, c.Param("id"), model.Status(req.Status), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": b})
}
