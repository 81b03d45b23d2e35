// Package service holds the business logic of the reservation system:
// the availability engine, the reservation ledger, the room catalog,
// identity and the adapters around external collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// Overlaps reports whether the half-open intervals [aIn, aOut) and
// [bIn, bOut) share at least one day. Touching intervals do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// IsFree reports whether no CONFIRMED booking in existing overlaps
// [checkIn, checkOut). Cancelled bookings are ignored.
func IsFree(existing []model.Booking, checkIn, checkOut time.Time) bool {
	for _, b := range existing {
		if b.IsConfirmed() && Overlaps(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			return false
		}
	}
	return true
}

// AvailabilityEngine answers free/occupied questions for rooms over date
// ranges. It only ever looks at CONFIRMED bookings.
type AvailabilityEngine struct {
	rooms    repository.Rooms
	bookings repository.Bookings
	now      func() time.Time
}

// NewAvailabilityEngine wires the engine; now may be nil for time.Now.
func NewAvailabilityEngine(rooms repository.Rooms, bookings repository.Bookings, now func() time.Time) *AvailabilityEngine {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityEngine{rooms: rooms, bookings: bookings, now: now}
}

// Today is the current UTC calendar day.
func (e *AvailabilityEngine) Today() time.Time { return model.Day(e.now()) }

// CheckRange rejects empty or inverted intervals.
func CheckRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() || !checkIn.Before(checkOut) {
		return apperr.ErrInvalidRange
	}
	return nil
}

// CheckBookableRange additionally rejects a check-in before today.
func (e *AvailabilityEngine) CheckBookableRange(checkIn, checkOut time.Time) error {
	if err := CheckRange(checkIn, checkOut); err != nil {
		return err
	}
	if checkIn.Before(e.Today()) {
		return apperr.ErrInvalidRange
	}
	return nil
}

// IsAvailable reports whether roomID has no CONFIRMED booking overlapping
// [checkIn, checkOut).
func (e *AvailabilityEngine) IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	if err := CheckRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := e.rooms.GetByID(ctx, roomID); err != nil {
		return false, roomErr(err)
	}
	existing, err := e.bookings.ListConfirmedEndingAfter(ctx, roomID, checkIn)
	if err != nil {
		return false, storageErr(err)
	}
	return IsFree(existing, checkIn, checkOut), nil
}

// ListAvailable returns every live room, optionally of one type, that is
// free over [checkIn, checkOut). An empty roomType means all types.
func (e *AvailabilityEngine) ListAvailable(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]model.Room, error) {
	if err := CheckRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	var (
		rooms []model.Room
		err   error
	)
	if roomType == "" {
		rooms, err = e.rooms.List(ctx)
	} else {
		rooms, err = e.rooms.ListByType(ctx, roomType)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	confirmed, err := e.bookings.ListConfirmedEndingAfter(ctx, 0, checkIn)
	if err != nil {
		return nil, storageErr(err)
	}
	byRoom := make(map[uint64][]model.Booking, len(rooms))
	for _, b := range confirmed {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	out := make([]model.Room, 0, len(rooms))
	for _, rm := range rooms {
		if IsFree(byRoom[rm.ID], checkIn, checkOut) {
			out = append(out, rm)
		}
	}
	return out, nil
}

// roomErr maps a repository error from a room lookup.
func roomErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrRoomNotFound
	}
	return storageErr(err)
}

// storageErr maps unexpected repository errors; ErrBusy becomes retryable.
func storageErr(err error) error {
	if errors.Is(err, repository.ErrBusy) {
		return apperr.Wrap(apperr.ErrBusy, err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("storage: %w", err)
}
