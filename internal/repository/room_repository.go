package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// RoomRepo is the MySQL implementation of Rooms.
type RoomRepo struct{ DB *sql.DB }

// NewRoomRepo returns a RoomRepo backed by db.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomCols = "id,room_type,room_price,room_description,room_photo_url,created_at,deleted_at"

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		rm      model.Room
		deleted sql.NullTime
	)
	err := row.Scan(&rm.ID, &rm.Type, &rm.Price, &rm.Description, &rm.PhotoURL, &rm.CreatedAt, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return rm, ErrNotFound
	}
	if deleted.Valid {
		t := deleted.Time
		rm.DeletedAt = &t
	}
	return rm, err
}

func (r *RoomRepo) queryRooms(ctx context.Context, q string, args ...any) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Create inserts rm and sets its ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (room_type, room_price, room_description, room_photo_url) VALUES (?,?,?,?)",
		rm.Type, rm.Price, rm.Description, rm.PhotoURL)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.CreatedAt = time.Now().UTC()
	return nil
}

// GetByID returns a live room.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return scanRoom(r.DB.QueryRowContext(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE id=? AND deleted_at IS NULL LIMIT 1", id))
}

// List returns live rooms, newest first.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.queryRooms(ctx, "SELECT "+roomCols+" FROM rooms WHERE deleted_at IS NULL ORDER BY id DESC")
}

// ListByType returns live rooms of one type, newest first.
func (r *RoomRepo) ListByType(ctx context.Context, roomType string) ([]model.Room, error) {
	return r.queryRooms(ctx,
		"SELECT "+roomCols+" FROM rooms WHERE deleted_at IS NULL AND room_type=? ORDER BY id DESC", roomType)
}

// ListTypes returns the distinct room types of live rooms.
func (r *RoomRepo) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT DISTINCT room_type FROM rooms WHERE deleted_at IS NULL ORDER BY room_type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update overwrites the mutable columns of a live room.
func (r *RoomRepo) Update(ctx context.Context, rm model.Room) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE rooms SET room_type=?, room_price=?, room_description=?, room_photo_url=? WHERE id=? AND deleted_at IS NULL",
		rm.Type, rm.Price, rm.Description, rm.PhotoURL, rm.ID)
	if err != nil {
		return translate(err)
	}
	// MySQL reports 0 affected rows when values are unchanged, so confirm
	// existence separately before calling it missing.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a room. The room row is locked first so a concurrent
// Reserve either commits before the check (and blocks the delete) or sees
// the room as gone.
func (r *RoomRepo) Delete(ctx context.Context, id uint64, from time.Time) error {
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

	var locked uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM rooms WHERE id=? AND deleted_at IS NULL FOR UPDATE", id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return translate(err)
	}
	var upcoming int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE room_id=? AND status='CONFIRMED' AND check_out_date > ?",
		id, from).Scan(&upcoming); err != nil {
		return translate(err)
	}
	if upcoming > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "UPDATE rooms SET deleted_at=UTC_TIMESTAMP() WHERE id=?", id); err != nil {
		return translate(err)
	}
	if err := tx.Commit(); err != nil {
		return translate(err)
	}
	committed = true
	return nil
}
