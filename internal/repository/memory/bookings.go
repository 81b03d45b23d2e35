package memory

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// BookingStore implements repository.Bookings. Lock order is always the
// room mutex first, then the store mutex.
type BookingStore struct{ s *Store }

var _ repository.Bookings = (*BookingStore)(nil)

// confirmedEndingAfter is the scan used by Reserve and the availability
// queries. Caller holds s.mu for reading.
func (s *Store) confirmedEndingAfter(roomID uint64, since time.Time) []model.Booking {
	var out []model.Booking
	for _, b := range s.bookings {
		if (roomID == 0 || b.RoomID == roomID) && b.IsConfirmed() && b.CheckOut.After(since) {
			out = append(out, b)
		}
	}
	return sortBookings(out, byCheckIn)
}

// Reserve holds the room lock across admit and insert.
func (bs *BookingStore) Reserve(ctx context.Context, b *model.Booking, admit repository.AdmitFunc) error {
	s := bs.s
	unlock := s.roomLocks.Lock(b.RoomID)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return repository.ErrBusy
	}

	s.mu.RLock()
	_, ok := s.live(b.RoomID)
	confirmed := s.confirmedEndingAfter(b.RoomID, b.CheckIn)
	s.mu.RUnlock()
	if !ok {
		return repository.ErrNotFound
	}
	if err := admit(confirmed); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[b.ConfirmationCode]; taken {
		return repository.ErrDuplicate
	}
	s.nextBooking++
	b.ID = s.nextBooking
	b.Status = model.BookingConfirmed
	b.CreatedAt = time.Now().UTC()
	b.CancelledAt = nil
	s.bookings[b.ID] = *b
	s.codes[b.ConfirmationCode] = b.ID
	return nil
}

// Cancel flips a CONFIRMED booking to CANCELLED under the room lock.
func (bs *BookingStore) Cancel(_ context.Context, id uint64, at time.Time) (model.Booking, error) {
	s := bs.s
	s.mu.RLock()
	cur, ok := s.bookings[id]
	s.mu.RUnlock()
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}

	unlock := s.roomLocks.Lock(cur.RoomID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	if !b.IsConfirmed() {
		return model.Booking{}, repository.ErrAlreadyCancelled
	}
	b.Status = model.BookingCancelled
	b.CancelledAt = &at
	s.bookings[id] = b
	return b, nil
}

// GetByID returns ErrNotFound for unknown ids.
func (bs *BookingStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s := bs.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

// GetByConfirmationCode looks a booking up by its public code.
func (bs *BookingStore) GetByConfirmationCode(_ context.Context, code string) (model.Booking, error) {
	s := bs.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return s.bookings[id], nil
}

func (bs *BookingStore) collect(keep func(model.Booking) bool) []model.Booking {
	s := bs.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// ListAll returns every booking, newest first.
func (bs *BookingStore) ListAll(_ context.Context) ([]model.Booking, error) {
	return sortBookings(bs.collect(func(model.Booking) bool { return true }), newestFirst), nil
}

// ListByUser returns a user's booking history, newest first.
func (bs *BookingStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	return sortBookings(bs.collect(func(b model.Booking) bool { return b.UserID == userID }), newestFirst), nil
}

// ListByRoom returns the bookings held against a room.
func (bs *BookingStore) ListByRoom(_ context.Context, roomID uint64) ([]model.Booking, error) {
	return sortBookings(bs.collect(func(b model.Booking) bool { return b.RoomID == roomID }), byCheckIn), nil
}

// ListConfirmedEndingAfter filters by room unless roomID is 0.
func (bs *BookingStore) ListConfirmedEndingAfter(_ context.Context, roomID uint64, since time.Time) ([]model.Booking, error) {
	s := bs.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.confirmedEndingAfter(roomID, since), nil
}
