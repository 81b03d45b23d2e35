// Package queue defines booking lifecycle events and moves them over
// RabbitMQ: a publisher used by the reservation ledger and a background
// consumer that appends them to logs/booking.log.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// Queue names double as event types and routing keys on the default exchange.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is published after a booking commits or is cancelled. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingEvent struct {
	Type             string `json:"type"`
	BookingID        uint64 `json:"booking_id"`
	RoomID           uint64 `json:"room_id"`
	UserID           uint64 `json:"user_id"`
	ConfirmationCode string `json:"confirmation_code"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Adults           int    `json:"adults"`
	Children         int    `json:"children"`
	Status           string `json:"status"`
	OccurredAt       string `json:"occurred_at"`
}

// NewBookingEvent builds the event of the given type for b.
func NewBookingEvent(typ string, b model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             typ,
		BookingID:        b.ID,
		RoomID:           b.RoomID,
		UserID:           b.UserID,
		ConfirmationCode: b.ConfirmationCode,
		CheckIn:          model.FormatDate(b.CheckIn),
		CheckOut:         model.FormatDate(b.CheckOut),
		Adults:           b.Adults,
		Children:         b.Children,
		Status:           b.Status,
		OccurredAt:       at.UTC().Format(time.RFC3339),
	}
}
