package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository/memory"
)

// fixedNow pins "today" to 2026-01-01 10:00 UTC.
var fixedNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

// recordingPublisher is safe for the concurrent reserves in ledger tests.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) snapshot() []queue.BookingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.BookingEvent(nil), r.events...)
}

type fixture struct {
	store  *memory.Store
	engine *AvailabilityEngine
	ledger *ReservationLedger
	events *recordingPublisher
	user   model.User
	room   model.Room
}

func newFixture(t *testing.T, opts ...LedgerOption) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	engine := NewAvailabilityEngine(store.Rooms(), store.Bookings(), func() time.Time { return fixedNow })
	events := &recordingPublisher{}
	opts = append([]LedgerOption{WithEvents(events)}, opts...)
	ledger := NewReservationLedger(engine, store.Bookings(), store.Users(), opts...)

	user := model.User{Name: "Guest", Email: "guest@example.com", Role: model.RoleUser}
	require.NoError(t, store.Users().Create(ctx, &user))
	room := model.Room{Type: "Deluxe", Price: decimal.RequireFromString("120.00")}
	require.NoError(t, store.Rooms().Create(ctx, &room))

	return &fixture{store: store, engine: engine, ledger: ledger, events: events, user: user, room: room}
}

func (f *fixture) reserve(t *testing.T, in, out string) (model.Booking, error) {
	t.Helper()
	return f.ledger.Reserve(context.Background(), ReserveRequest{
		RoomID: f.room.ID, UserID: f.user.ID,
		CheckIn: day(t, in), CheckOut: day(t, out), Adults: 2,
	})
}
