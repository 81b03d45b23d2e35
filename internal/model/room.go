package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a row of the `rooms` table. Price is a fixed-point nightly rate
// (DECIMAL(10,2)); PhotoURL is whatever the blob store returned on upload.
// Deleted rooms keep their row with DeletedAt set so booking history can
// still resolve the reference.
type Room struct {
	ID          uint64
	Type        string
	Price       decimal.Decimal
	Description string
	PhotoURL    string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// RoomPatch carries the optional fields of a room update; nil means keep.
type RoomPatch struct {
	Type        *string
	Price       *decimal.Decimal
	Description *string
	PhotoURL    *string
}

// Apply copies the non-nil fields of p onto r.
func (p RoomPatch) Apply(r *Room) {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.PhotoURL != nil {
		r.PhotoURL = *p.PhotoURL
	}
}
