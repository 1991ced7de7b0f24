package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"guardline/internal/service"
)

// ChatHandler exposes the per-booking message thread.
type ChatHandler struct {
	Chat *service.ChatService
}

func NewChatHandler(ch *service.ChatService) *ChatHandler { return &ChatHandler{Chat: ch} }

type sendMessageReq struct {
	Text string `json:"text"`
}

// Send handles POST /v1/bookings/:id/messages.
func (h *ChatHandler) Send(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m, err := h.Chat.Send(ctx, c.Param("id"), act, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": m})
}

// List handles GET /v1/bookings/:id/messages, ordered by created_at
// ascending.
func (h *ChatHandler) List(c echo.Context) error {
	act, ok := actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	msgs, err := h.Chat.List(ctx, c.Param("id"), act)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": msgs, "count": len(msgs)})
}
