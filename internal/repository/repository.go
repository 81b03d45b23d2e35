package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// Users stores identities. Emails are compared lower-cased.
type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Delete removes the user unless they hold a CONFIRMED booking whose
	// check-out is after from, in which case it returns ErrConflict.
	Delete(ctx context.Context, id uint64, from time.Time) error
}

// Rooms stores the room inventory. Soft-deleted rooms are invisible to
// every read except booking history.
type Rooms interface {
	Create(ctx context.Context, r *model.Room) error
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	ListByType(ctx context.Context, roomType string) ([]model.Room, error)
	ListTypes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, r model.Room) error
	// Delete soft-deletes the room unless it has a CONFIRMED booking whose
	// check-out is after from (ErrConflict).
	Delete(ctx context.Context, id uint64, from time.Time) error
}

// AdmitFunc inspects the CONFIRMED bookings of a room and returns nil if
// the pending booking may be inserted. It runs while the room is locked.
type AdmitFunc func(confirmed []model.Booking) error

// Bookings stores reservations. Reserve and Cancel are serialized per room:
// implementations must guarantee that no other Reserve or Cancel for the
// same room interleaves between the admit check and the write.
type Bookings interface {
	// Reserve locks b.RoomID, loads its CONFIRMED bookings that end after
	// b.CheckIn, calls admit and, if admit returns nil, inserts b with
	// status CONFIRMED. b.ID, b.Status and b.CreatedAt are filled in.
	// Errors: ErrNotFound (room), ErrDuplicate (confirmation code), ErrBusy,
	// or whatever admit returned.
	Reserve(ctx context.Context, b *model.Booking, admit AdmitFunc) error
	// Cancel flips a CONFIRMED booking to CANCELLED and returns the
	// updated row. Errors: ErrNotFound, ErrAlreadyCancelled, ErrBusy.
	Cancel(ctx context.Context, id uint64, at time.Time) (model.Booking, error)
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error)
	// ListConfirmedEndingAfter returns CONFIRMED bookings with check-out
	// after since, optionally restricted to one room (roomID 0 means all).
	ListConfirmedEndingAfter(ctx context.Context, roomID uint64, since time.Time) ([]model.Booking, error)
}

// Revocations is the denylist of token ids revoked before their expiry.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
