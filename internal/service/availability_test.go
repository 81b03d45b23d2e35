package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"identical", "2026-01-01", "2026-01-05", "2026-01-01", "2026-01-05", true},
		{"partial tail", "2026-01-01", "2026-01-05", "2026-01-03", "2026-01-08", true},
		{"contained", "2026-01-01", "2026-01-10", "2026-01-03", "2026-01-04", true},
		{"back to back", "2026-01-01", "2026-01-05", "2026-01-05", "2026-01-10", false},
		{"back to back reversed", "2026-01-05", "2026-01-10", "2026-01-01", "2026-01-05", false},
		{"disjoint", "2026-01-01", "2026-01-02", "2026-02-01", "2026-02-02", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(day(t, tc.aIn), day(t, tc.aOut), day(t, tc.bIn), day(t, tc.bOut))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIsFreeIgnoresCancelled(t *testing.T) {
	existing := []model.Booking{{
		CheckIn: day(t, "2026-01-01"), CheckOut: day(t, "2026-01-05"), Status: model.BookingCancelled,
	}}
	require.True(t, IsFree(existing, day(t, "2026-01-02"), day(t, "2026-01-03")))
}

func TestIsAvailableRejectsInvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.IsAvailable(ctx, f.room.ID, day(t, "2026-01-05"), day(t, "2026-01-05"))
	require.ErrorIs(t, err, apperr.ErrInvalidRange)

	_, err = f.engine.IsAvailable(ctx, f.room.ID, day(t, "2026-01-06"), day(t, "2026-01-05"))
	require.ErrorIs(t, err, apperr.ErrInvalidRange)

	_, err = f.engine.IsAvailable(ctx, 999, day(t, "2026-01-02"), day(t, "2026-01-05"))
	require.ErrorIs(t, err, apperr.ErrRoomNotFound)
}

func TestListAvailableFiltersByTypeAndBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	suite := model.Room{Type: "Suite", Price: decimal.RequireFromString("300")}
	require.NoError(t, f.store.Rooms().Create(ctx, &suite))

	_, err := f.reserve(t, "2026-01-02", "2026-01-05")
	require.NoError(t, err)

	rooms, err := f.engine.ListAvailable(ctx, day(t, "2026-01-03"), day(t, "2026-01-04"), "")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, suite.ID, rooms[0].ID)

	rooms, err = f.engine.ListAvailable(ctx, day(t, "2026-01-05"), day(t, "2026-01-06"), "Deluxe")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, f.room.ID, rooms[0].ID)

	_, err = f.engine.ListAvailable(ctx, day(t, "2026-01-05"), day(t, "2026-01-01"), "")
	require.ErrorIs(t, err, apperr.ErrInvalidRange)
}
