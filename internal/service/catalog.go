package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// BlobStore persists an uploaded photo and returns its public URL.
type BlobStore interface {
	Store(ctx context.Context, name string, r io.Reader) (string, error)
}

// Photo is an uploaded image awaiting storage.
type Photo struct {
	Name   string
	Reader io.Reader
}

// NewRoom is the input of RoomCatalog.Add.
type NewRoom struct {
	Type        string
	Price       decimal.Decimal
	Description string
	Photo       *Photo
}

// RoomWithBookings is a room together with its booking history.
type RoomWithBookings struct {
	Room     model.Room
	Bookings []model.Booking
}

// RoomCatalog manages the room inventory.
type RoomCatalog struct {
	rooms    repository.Rooms
	bookings repository.Bookings
	blobs    BlobStore
	engine   *AvailabilityEngine
	onChange func(ctx context.Context)
}

// NewRoomCatalog wires the catalog. onChange, if set, runs after every
// successful mutation (used to drop cached room listings).
func NewRoomCatalog(rooms repository.Rooms, bookings repository.Bookings, blobs BlobStore, engine *AvailabilityEngine, onChange func(ctx context.Context)) *RoomCatalog {
	return &RoomCatalog{rooms: rooms, bookings: bookings, blobs: blobs, engine: engine, onChange: onChange}
}

func (c *RoomCatalog) changed(ctx context.Context) {
	if c.onChange != nil {
		c.onChange(ctx)
	}
}

func (c *RoomCatalog) upload(ctx context.Context, p *Photo) (string, error) {
	if c.blobs == nil {
		return "", apperr.Dependency("photo storage is not configured", nil)
	}
	url, err := c.blobs.Store(ctx, p.Name, p.Reader)
	if err != nil {
		logrus.WithError(err).Warn("photo upload failed")
		return "", apperr.Dependency("failed to upload photo", err)
	}
	return url, nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return apperr.Validation("room price cannot be negative")
	}
	return nil
}

// Add creates a room, uploading its photo first when one is provided.
func (c *RoomCatalog) Add(ctx context.Context, in NewRoom) (model.Room, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return model.Room{}, apperr.Validation("room type is required")
	}
	if err := validatePrice(in.Price); err != nil {
		return model.Room{}, err
	}
	rm := model.Room{Type: in.Type, Price: in.Price.Round(2), Description: strings.TrimSpace(in.Description)}
	if in.Photo != nil {
		url, err := c.upload(ctx, in.Photo)
		if err != nil {
			return model.Room{}, err
		}
		rm.PhotoURL = url
	}
	if err := c.rooms.Create(ctx, &rm); err != nil {
		return model.Room{}, storageErr(err)
	}
	logrus.WithFields(logrus.Fields{"room_id": rm.ID, "type": rm.Type}).Info("room added")
	c.changed(ctx)
	return rm, nil
}

// Update applies patch (and optionally a new photo) to a room.
func (c *RoomCatalog) Update(ctx context.Context, id uint64, patch model.RoomPatch, photo *Photo) (model.Room, error) {
	rm, err := c.rooms.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, roomErr(err)
	}
	if patch.Type != nil {
		t := strings.TrimSpace(*patch.Type)
		if t == "" {
			patch.Type = nil
		} else {
			patch.Type = &t
		}
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return model.Room{}, err
		}
		p := patch.Price.Round(2)
		patch.Price = &p
	}
	if photo != nil {
		url, err := c.upload(ctx, photo)
		if err != nil {
			return model.Room{}, err
		}
		patch.PhotoURL = &url
	}
	patch.Apply(&rm)
	if err := c.rooms.Update(ctx, rm); err != nil {
		return model.Room{}, roomErr(err)
	}
	c.changed(ctx)
	return rm, nil
}

// Delete soft-deletes a room. Rooms with upcoming confirmed bookings are
// kept and the call fails with a conflict.
func (c *RoomCatalog) Delete(ctx context.Context, id uint64) error {
	err := c.rooms.Delete(ctx, id, c.engine.Today())
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrConflict):
		return apperr.ErrRoomHasBookings
	default:
		return roomErr(err)
	}
	logrus.WithField("room_id", id).Info("room deleted")
	c.changed(ctx)
	return nil
}

// Room returns one live room.
func (c *RoomCatalog) Room(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := c.rooms.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, roomErr(err)
	}
	return rm, nil
}

// Get returns a room with its bookings.
func (c *RoomCatalog) Get(ctx context.Context, id uint64) (RoomWithBookings, error) {
	rm, err := c.Room(ctx, id)
	if err != nil {
		return RoomWithBookings{}, err
	}
	bs, err := c.bookings.ListByRoom(ctx, id)
	if err != nil {
		return RoomWithBookings{}, storageErr(err)
	}
	return RoomWithBookings{Room: rm, Bookings: bs}, nil
}

// List returns all rooms, newest first.
func (c *RoomCatalog) List(ctx context.Context) ([]model.Room, error) {
	rooms, err := c.rooms.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return rooms, nil
}

// Types returns the distinct room types.
func (c *RoomCatalog) Types(ctx context.Context) ([]string, error) {
	types, err := c.rooms.ListTypes(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return types, nil
}

// AvailableTonight lists rooms free for [today, tomorrow).
func (c *RoomCatalog) AvailableTonight(ctx context.Context) ([]model.Room, error) {
	today := c.engine.Today()
	return c.engine.ListAvailable(ctx, today, today.AddDate(0, 0, 1), "")
}
