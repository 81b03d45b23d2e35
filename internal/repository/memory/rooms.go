package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// RoomStore implements repository.Rooms.
type RoomStore struct{ s *Store }

var _ repository.Rooms = (*RoomStore)(nil)

// Create assigns the next id.
func (r *RoomStore) Create(_ context.Context, rm *model.Room) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRoom++
	rm.ID = s.nextRoom
	rm.CreatedAt = time.Now().UTC()
	s.rooms[rm.ID] = *rm
	return nil
}

// live returns the room if it exists and is not soft-deleted. Caller holds s.mu.
func (s *Store) live(id uint64) (model.Room, bool) {
	rm, ok := s.rooms[id]
	if !ok || rm.DeletedAt != nil {
		return model.Room{}, false
	}
	return rm, true
}

// GetByID hides soft-deleted rooms.
func (r *RoomStore) GetByID(_ context.Context, id uint64) (model.Room, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	rm, ok := s.live(id)
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return rm, nil
}

func (r *RoomStore) filter(keep func(model.Room) bool) []model.Room {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Room
	for _, rm := range s.rooms {
		if rm.DeletedAt == nil && keep(rm) {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// List returns live rooms, newest first.
func (r *RoomStore) List(_ context.Context) ([]model.Room, error) {
	return r.filter(func(model.Room) bool { return true }), nil
}

// ListByType filters live rooms by type.
func (r *RoomStore) ListByType(_ context.Context, roomType string) ([]model.Room, error) {
	return r.filter(func(rm model.Room) bool { return rm.Type == roomType }), nil
}

// ListTypes returns the distinct types of live rooms.
func (r *RoomStore) ListTypes(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, rm := range r.filter(func(model.Room) bool { return true }) {
		if !seen[rm.Type] {
			seen[rm.Type] = true
			out = append(out, rm.Type)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Update replaces a live room.
func (r *RoomStore) Update(_ context.Context, rm model.Room) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.live(rm.ID)
	if !ok {
		return repository.ErrNotFound
	}
	rm.CreatedAt = cur.CreatedAt
	rm.DeletedAt = nil
	s.rooms[rm.ID] = rm
	return nil
}

// Delete takes the room lock so it cannot interleave with a Reserve.
func (r *RoomStore) Delete(_ context.Context, id uint64, from time.Time) error {
	s := r.s
	unlock := s.roomLocks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.live(id)
	if !ok {
		return repository.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.RoomID == id && b.IsConfirmed() && b.CheckOut.After(from) {
			return repository.ErrConflict
		}
	}
	now := time.Now().UTC()
	rm.DeletedAt = &now
	s.rooms[id] = rm
	return nil
}
