package router // package router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"

	"guardline/internal/handler"
	"guardline/internal/middleware"
	"guardline/internal/model"
)

// Register sets up every route on the provided Echo instance.  Auth routes
// live under /v1/auth without a token; everything else under /v1 requires a
// valid access token, with the operator listing additionally gated on the
// OPERATOR role.
func Register(e *echo.Echo, a *handler.AuthHandler, b *handler.BookingHandler, ch *handler.ChatHandler, op *handler.OperatorHandler, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", a.Register)
	auth.POST("/signin", a.SignIn)
	auth.POST("/refresh", a.Refresh)
	auth.POST("/logout", a.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleClient, model.RoleOperator))
	v1.GET("/me", a.Me)

	v1.POST("/bookings", b.Create)
	v1.GET("/bookings", b.List)
	v1.GET("/bookings/code/:code", b.GetByCode)
	v1.POST("/bookings/:id/status", b.UpdateStatus)

	v1.POST("/bookings/:id/messages", ch.Send)
	v1.GET("/bookings/:id/messages", ch.List)

	operator := v1.Group("/operator")
	operator.Use(middleware.RequireRole(model.RoleOperator))
	operator.GET("/bookings", op.ListBookings)
}
