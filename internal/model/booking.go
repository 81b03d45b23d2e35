package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses. The only transition is CONFIRMED -> CANCELLED.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking reserves one room for one user over the half-open interval
// [CheckIn, CheckOut). Both dates are UTC midnights. Rows are never
// deleted; cancellation only flips Status.
type Booking struct {
	ID               uint64
	RoomID           uint64
	UserID           uint64
	CheckIn          time.Time
	CheckOut         time.Time
	Adults           int
	Children         int
	ConfirmationCode string
	Status           string
	CreatedAt        time.Time
	CancelledAt      *time.Time
}

// IsConfirmed reports whether the booking still holds its room.
func (b Booking) IsConfirmed() bool { return b.Status == BookingConfirmed }

// Nights is the number of nights between check-in and check-out.
func (b Booking) Nights() int { return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24) }

// TotalGuests counts adults and children together.
func (b Booking) TotalGuests() int { return b.Adults + b.Children }

// Total is the price of the stay at the given nightly rate.
func (b Booking) Total(nightly decimal.Decimal) decimal.Decimal {
	return nightly.Mul(decimal.NewFromInt(int64(b.Nights())))
}
