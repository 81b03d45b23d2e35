package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	b := model.Booking{
		ID: 9, RoomID: 3, UserID: 5, ConfirmationCode: "AB12CD34",
		CheckIn:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Adults:   2, Children: 1, Status: model.BookingConfirmed,
	}
	at := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

	for _, typ := range []string{BookingConfirmedQueue, BookingCancelledQueue} {
		body, err := json.Marshal(NewBookingEvent(typ, b, at))
		require.NoError(t, err)
		require.NoError(t, handleMessage(body, path))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "[2025-12-20T10:00:00Z] Booking confirmed | booking_id=9 | code=AB12CD34 | user_id=5 | room_id=3 | stay=2026-01-01..2026-01-05 | guests=2+1\n" +
		"[2025-12-20T10:00:00Z] Booking cancelled | booking_id=9 | code=AB12CD34 | user_id=5 | room_id=3 | stay=2026-01-01..2026-01-05 | guests=2+1\n"
	require.Equal(t, want, string(data))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	require.Error(t, handleMessage([]byte("{"), filepath.Join(t.TempDir(), "x.log")))
}
