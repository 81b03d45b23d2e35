package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// maxTxAttempts bounds how often a transaction aborted by a deadlock or lock
// wait timeout is replayed before ErrBusy is returned.
const maxTxAttempts = 3

// BookingRepo is the MySQL implementation of Bookings. Per-room
// serialization comes from locking the parent rooms row with
// SELECT ... FOR UPDATE before reading any bookings of that room.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a BookingRepo backed by db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingCols = "id,room_id,user_id,check_in_date,check_out_date,num_of_adults,num_of_children,confirmation_code,status,created_at,cancelled_at"

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b         model.Booking
		cancelled sql.NullTime
	)
	err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.CheckIn, &b.CheckOut, &b.Adults, &b.Children,
		&b.ConfirmationCode, &b.Status, &b.CreatedAt, &cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if cancelled.Valid {
		t := cancelled.Time
		b.CancelledAt = &t
	}
	return b, err
}

func queryBookings(ctx context.Context, q queryer, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// withRetry runs fn, replaying it when MySQL aborts the transaction with a
// deadlock or lock wait timeout. Other errors are returned as is.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = fn()
		if err == nil || !isRetryable(err) {
			return translate(err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return ErrBusy
}

// Reserve implements Bookings.Reserve inside one transaction.
func (r *BookingRepo) Reserve(ctx context.Context, b *model.Booking, admit AdmitFunc) error {
	return withRetry(ctx, func() error {
		tx, err := r.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		// Lock the room row; every Reserve/Cancel of this room queues here.
		var roomID uint64
		if err := tx.QueryRowContext(ctx,
			"SELECT id FROM rooms WHERE id=? AND deleted_at IS NULL FOR UPDATE", b.RoomID).Scan(&roomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		confirmed, err := queryBookings(ctx, tx,
			"SELECT "+bookingCols+" FROM bookings WHERE room_id=? AND status='CONFIRMED' AND check_out_date > ? ORDER BY check_in_date",
			b.RoomID, b.CheckIn)
		if err != nil {
			return err
		}
		if err := admit(confirmed); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (room_id, user_id, check_in_date, check_out_date, num_of_adults, num_of_children, confirmation_code, status)
			 VALUES (?,?,?,?,?,?,?,'CONFIRMED')`,
			b.RoomID, b.UserID, b.CheckIn, b.CheckOut, b.Adults, b.Children, b.ConfirmationCode)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true

		b.ID = uint64(id)
		b.Status = model.BookingConfirmed
		b.CreatedAt = time.Now().UTC()
		return nil
	})
}

// Cancel implements Bookings.Cancel. The booking's room is locked before the
// status check so cancellation is ordered against concurrent reserves.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64, at time.Time) (model.Booking, error) {
	var out model.Booking
	err := withRetry(ctx, func() error {
		tx, err := r.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		var roomID uint64
		if err := tx.QueryRowContext(ctx, "SELECT room_id FROM bookings WHERE id=?", id).Scan(&roomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var locked uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM rooms WHERE id=? FOR UPDATE", roomID).Scan(&locked); err != nil {
			return err
		}
		b, err := scanBooking(tx.QueryRowContext(ctx,
			"SELECT "+bookingCols+" FROM bookings WHERE id=? FOR UPDATE", id))
		if err != nil {
			return err
		}
		if b.Status != model.BookingConfirmed {
			return ErrAlreadyCancelled
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE bookings SET status='CANCELLED', cancelled_at=? WHERE id=? AND status='CONFIRMED'",
			at, id); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true

		b.Status = model.BookingCancelled
		b.CancelledAt = &at
		out = b
		return nil
	})
	return out, err
}

// GetByID fetches one booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return scanBooking(r.DB.QueryRowContext(ctx, "SELECT "+bookingCols+" FROM bookings WHERE id=?", id))
}

// GetByConfirmationCode is an exact match on the unique code column.
func (r *BookingRepo) GetByConfirmationCode(ctx context.Context, code string) (model.Booking, error) {
	return scanBooking(r.DB.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE confirmation_code=?", code))
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return queryBookings(ctx, r.DB, "SELECT "+bookingCols+" FROM bookings ORDER BY id DESC")
}

// ListByUser returns a user's booking history, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return queryBookings(ctx, r.DB, "SELECT "+bookingCols+" FROM bookings WHERE user_id=? ORDER BY id DESC", userID)
}

// ListByRoom returns all bookings of a room ordered by check-in.
func (r *BookingRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	return queryBookings(ctx, r.DB, "SELECT "+bookingCols+" FROM bookings WHERE room_id=? ORDER BY check_in_date", roomID)
}

// ListConfirmedEndingAfter implements Bookings.ListConfirmedEndingAfter.
func (r *BookingRepo) ListConfirmedEndingAfter(ctx context.Context, roomID uint64, since time.Time) ([]model.Booking, error) {
	if roomID != 0 {
		return queryBookings(ctx, r.DB,
			"SELECT "+bookingCols+" FROM bookings WHERE room_id=? AND status='CONFIRMED' AND check_out_date > ? ORDER BY check_in_date",
			roomID, since)
	}
	return queryBookings(ctx, r.DB,
		"SELECT "+bookingCols+" FROM bookings WHERE status='CONFIRMED' AND check_out_date > ? ORDER BY room_id, check_in_date",
		since)
}
