// Package memory is an in-process implementation of the repository
// interfaces. Reserve and Cancel serialize on a mutex keyed by room id, so
// requests for different rooms never wait on each other.
package memory

import (
	"sort"
	"sync"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// Store owns all tables. Use Users, Rooms and Bookings to get the views
// that satisfy the repository interfaces.
type Store struct {
	mu       sync.RWMutex
	users    map[uint64]model.User
	emails   map[string]uint64
	rooms    map[uint64]model.Room
	bookings map[uint64]model.Booking
	codes    map[string]uint64

	nextUser    uint64
	nextRoom    uint64
	nextBooking uint64

	roomLocks keyedMutex
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[uint64]model.User),
		emails:   make(map[string]uint64),
		rooms:    make(map[uint64]model.Room),
		bookings: make(map[uint64]model.Booking),
		codes:    make(map[string]uint64),
	}
}

// Users, Rooms and Bookings return views over the shared tables.
func (s *Store) Users() *UserStore       { return &UserStore{s: s} }
// Rooms returns the room table view.
func (s *Store) Rooms() *RoomStore       { return &RoomStore{s: s} }
// Bookings returns the booking table view.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

// keyedMutex hands out one mutex per key. Entries are never evicted; the
// key space is the room inventory.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (k *keyedMutex) get(key uint64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[uint64]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key uint64) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

func sortBookings(bs []model.Booking, less func(a, b model.Booking) bool) []model.Booking {
	sort.Slice(bs, func(i, j int) bool { return less(bs[i], bs[j]) })
	return bs
}

func newestFirst(a, b model.Booking) bool { return a.ID > b.ID }

func byCheckIn(a, b model.Booking) bool {
	if a.CheckIn.Equal(b.CheckIn) {
		return a.ID < b.ID
	}
	return a.CheckIn.Before(b.CheckIn)
}
