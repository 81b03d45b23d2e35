package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// UserStore implements repository.Users.
type UserStore struct{ s *Store }

var _ repository.Users = (*UserStore)(nil)

// Create assigns the next id and rejects an email already in use.
func (u *UserStore) Create(_ context.Context, usr *model.User) error {
	s := u.s
	usr.Email = strings.ToLower(strings.TrimSpace(usr.Email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[usr.Email]; ok {
		return repository.ErrEmailExists
	}
	s.nextUser++
	usr.ID = s.nextUser
	usr.CreatedAt = time.Now().UTC()
	s.users[usr.ID] = *usr
	s.emails[usr.Email] = usr.ID
	return nil
}

// GetByEmail matches the address case-insensitively.
func (u *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return s.users[id], nil
}

// GetByID returns ErrNotFound for unknown ids.
func (u *UserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	usr, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return usr, nil
}

// List returns users ordered by id.
func (u *UserStore) List(_ context.Context) ([]model.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, usr := range s.users {
		out = append(out, usr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete refuses users holding confirmed bookings that end after from.
func (u *UserStore) Delete(_ context.Context, id uint64, from time.Time) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	usr, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.UserID == id && b.IsConfirmed() && b.CheckOut.After(from) {
			return repository.ErrConflict
		}
	}
	delete(s.users, id)
	delete(s.emails, usr.Email)
	return nil
}
