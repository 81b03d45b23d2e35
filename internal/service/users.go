package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// UserProfile is a user together with their booking history.
type UserProfile struct {
	User     model.User
	Bookings []model.Booking
}

// UserDirectory covers the administrative and self-service user reads.
type UserDirectory struct {
	users  repository.Users
	ledger *ReservationLedger
}

// NewUserDirectory reads profiles through ledger for booking history.
func NewUserDirectory(users repository.Users, ledger *ReservationLedger) *UserDirectory {
	return &UserDirectory{users: users, ledger: ledger}
}

func userErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	return storageErr(err)
}

// List returns all users.
func (d *UserDirectory) List(ctx context.Context) ([]model.User, error) {
	us, err := d.users.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return us, nil
}

// Get returns one user.
func (d *UserDirectory) Get(ctx context.Context, id uint64) (model.User, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, userErr(err)
	}
	return u, nil
}

// Profile returns a user with their bookings. Non-admin actors may only
// read their own profile.
func (d *UserDirectory) Profile(ctx context.Context, id uint64, actor Actor) (UserProfile, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return UserProfile{}, apperr.ErrForbidden
	}
	u, err := d.Get(ctx, id)
	if err != nil {
		return UserProfile{}, err
	}
	bs, err := d.ledger.ListByUser(ctx, id)
	if err != nil {
		return UserProfile{}, err
	}
	return UserProfile{User: u, Bookings: bs}, nil
}

// Delete removes a user that holds no upcoming confirmed bookings.
func (d *UserDirectory) Delete(ctx context.Context, id uint64) error {
	err := d.users.Delete(ctx, id, d.ledger.engine.Today())
	switch {
	case err == nil:
		logrus.WithField("user_id", id).Info("user deleted")
		return nil
	case errors.Is(err, repository.ErrConflict):
		return apperr.ErrUserHasBookings
	}
	return userErr(err)
}
