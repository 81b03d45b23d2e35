package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// maxCodeAttempts bounds confirmation code regeneration on collisions.
const maxCodeAttempts = 5

// EventPublisher receives booking lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Actor is the verified caller of an operation.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// ReserveRequest is the input of ReservationLedger.Reserve.
type ReserveRequest struct {
	RoomID   uint64
	UserID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
}

// ReservationLedger owns booking records. Reserve runs the availability
// check and the insert as one unit per room; Cancel frees the range.
type ReservationLedger struct {
	engine   *AvailabilityEngine
	bookings repository.Bookings
	users    repository.Users
	codes    CodeGenerator
	events   EventPublisher
	now      func() time.Time
}

// LedgerOption customizes a ReservationLedger.
type LedgerOption func(*ReservationLedger)

// WithCodeGenerator replaces RandomCode.
func WithCodeGenerator(g CodeGenerator) LedgerOption {
	return func(l *ReservationLedger) { l.codes = g }
}

// WithEvents publishes booking events to p after each commit.
func WithEvents(p EventPublisher) LedgerOption {
	return func(l *ReservationLedger) { l.events = p }
}

// NewReservationLedger uses RandomCode and no event publisher unless overridden by opts.
func NewReservationLedger(engine *AvailabilityEngine, bookings repository.Bookings, users repository.Users, opts ...LedgerOption) *ReservationLedger {
	l := &ReservationLedger{
		engine:   engine,
		bookings: bookings,
		users:    users,
		codes:    RandomCode,
		now:      engine.now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Reserve books req.RoomID for req.UserID over [CheckIn, CheckOut).
func (l *ReservationLedger) Reserve(ctx context.Context, req ReserveRequest) (model.Booking, error) {
	checkIn, checkOut := model.Day(req.CheckIn), model.Day(req.CheckOut)
	if err := l.engine.CheckBookableRange(checkIn, checkOut); err != nil {
		return model.Booking{}, err
	}
	if req.Adults < 1 {
		return model.Booking{}, apperr.Validation("at least one adult is required")
	}
	if req.Children < 0 {
		return model.Booking{}, apperr.Validation("number of children cannot be negative")
	}
	if _, err := l.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, apperr.ErrUserNotFound
		}
		return model.Booking{}, storageErr(err)
	}

	admit := func(confirmed []model.Booking) error {
		if !IsFree(confirmed, checkIn, checkOut) {
			return apperr.ErrRoomUnavailable
		}
		return nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := l.codes()
		if err != nil {
			return model.Booking{}, fmt.Errorf("generate confirmation code: %w", err)
		}
		b := model.Booking{
			RoomID:           req.RoomID,
			UserID:           req.UserID,
			CheckIn:          checkIn,
			CheckOut:         checkOut,
			Adults:           req.Adults,
			Children:         req.Children,
			ConfirmationCode: code,
		}
		err = l.bookings.Reserve(ctx, &b, admit)
		switch {
		case err == nil:
			logrus.WithFields(logrus.Fields{
				"booking_id": b.ID, "room_id": b.RoomID, "user_id": b.UserID, "code": b.ConfirmationCode,
			}).Info("booking confirmed")
			l.publish(ctx, queue.BookingConfirmedQueue, b)
			return b, nil
		case errors.Is(err, repository.ErrDuplicate):
			logrus.WithField("attempt", attempt+1).Debug("confirmation code collision, regenerating")
			continue
		case errors.Is(err, repository.ErrNotFound):
			return model.Booking{}, apperr.ErrRoomNotFound
		default:
			return model.Booking{}, storageErr(err)
		}
	}
	return model.Booking{}, errors.New("could not allocate a unique confirmation code")
}

// Cancel moves a CONFIRMED booking to CANCELLED.
func (l *ReservationLedger) Cancel(ctx context.Context, bookingID uint64) (model.Booking, error) {
	b, err := l.bookings.Cancel(ctx, bookingID, l.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return model.Booking{}, apperr.ErrBookingNotFound
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return model.Booking{}, apperr.ErrAlreadyCancelled
	default:
		return model.Booking{}, storageErr(err)
	}
	logrus.WithFields(logrus.Fields{"booking_id": b.ID, "room_id": b.RoomID}).Info("booking cancelled")
	l.publish(ctx, queue.BookingCancelledQueue, b)
	return b, nil
}

// CancelAs cancels on behalf of actor: the booking owner or an ADMIN.
func (l *ReservationLedger) CancelAs(ctx context.Context, bookingID uint64, actor Actor) (model.Booking, error) {
	if !actor.IsAdmin() {
		b, err := l.Get(ctx, bookingID)
		if err != nil {
			return model.Booking{}, err
		}
		if b.UserID != actor.UserID {
			return model.Booking{}, apperr.ErrForbidden
		}
	}
	return l.Cancel(ctx, bookingID)
}

// Get returns one booking by id.
func (l *ReservationLedger) Get(ctx context.Context, bookingID uint64) (model.Booking, error) {
	b, err := l.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, apperr.ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, storageErr(err)
	}
	return b, nil
}

// FindByConfirmationCode is the public guest lookup. Codes are matched
// exactly after trimming and upper-casing.
func (l *ReservationLedger) FindByConfirmationCode(ctx context.Context, code string) (model.Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Booking{}, apperr.ErrBookingNotFound
	}
	b, err := l.bookings.GetByConfirmationCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, apperr.ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, storageErr(err)
	}
	return b, nil
}

// ListAll returns every booking, newest first.
func (l *ReservationLedger) ListAll(ctx context.Context) ([]model.Booking, error) {
	bs, err := l.bookings.ListAll(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return bs, nil
}

// ListByUser returns a user's bookings, newest first.
func (l *ReservationLedger) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	bs, err := l.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	return bs, nil
}

// ListByRoom returns a room's bookings ordered by check-in.
func (l *ReservationLedger) ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	bs, err := l.bookings.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, storageErr(err)
	}
	return bs, nil
}

// publish is best effort: the booking is already committed.
func (l *ReservationLedger) publish(ctx context.Context, typ string, b model.Booking) {
	if l.events == nil {
		return
	}
	ev := queue.NewBookingEvent(typ, b, l.now())
	if err := l.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logrus.WithError(err).WithField("booking_id", b.ID).Warn("publish booking event failed")
	}
}
