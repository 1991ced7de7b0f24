package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"guardline/internal/model"
	"guardline/internal/store"
)

// maxMessageLen bounds a single chat message.
const maxMessageLen = 2000

// ChatService appends and retrieves per-booking messages through the same
// primary/fallback store policy as bookings.  It is the only component that
// creates messages; the thread is append-only.
type ChatService struct {
	Store store.Store
}

func NewChatService(s store.Store) *ChatService { return &ChatService{Store: s} }

// Send appends a message to a booking's thread.  Empty text and unknown
// sender types are validation errors; an unknown booking is a not-found
// error.  The sender must be a party to the booking: the owning client or
// an operator.
func (c *ChatService) Send(ctx context.Context, bookingID string, actor Actor, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, fmt.Errorf("%w: message text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return model.Message{}, fmt.Errorf("%w: message text exceeds %d characters", ErrValidation, maxMessageLen)
	}

	b, err := c.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return model.Message{}, err
	}
	senderType := model.SenderClient
	if actor.Role == model.RoleOperator {
		senderType = model.SenderOperator
	} else if actor.ID != b.ClientID {
		return model.Message{}, fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}

	return c.Store.AppendMessage(ctx, model.Message{
		BookingID:  b.ID,
		SenderID:   actor.ID,
		SenderType: senderType,
		Text:       text,
	})
}

// List returns the booking's messages ordered by created_at ascending.  The
// sequence is finite and restartable: a repeat call re-reads from the start.
func (c *ChatService) List(ctx context.Context, bookingID string, actor Actor) ([]model.Message, error) {
	b, err := c.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleOperator && actor.ID != b.ClientID {
		return nil, fmt.Errorf("%w: not a party to this booking", ErrForbidden)
	}
	return c.Store.ListMessages(ctx, b.ID)
}
