package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrDispatcherFull is returned when the buffer has no room for an event.
var ErrDispatcherFull = errors.New("event buffer full")

// Sender delivers one event to the broker.
type Sender interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// Dispatcher queues events in memory and hands them to a Sender from a
// single goroutine, so callers never wait on the broker. Events that do
// not fit in the buffer are dropped.
type Dispatcher struct {
	out     Sender
	events  chan BookingEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	closeMu sync.Once
}

// NewDispatcher starts the delivery goroutine; stop it with Close.
func NewDispatcher(out Sender, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{out: out, events: make(chan BookingEvent, buffer), done: make(chan struct{})}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		if err := d.out.Publish(context.Background(), ev); err != nil {
			logrus.WithError(err).WithField("booking_id", ev.BookingID).Warn("dispatch booking event failed")
		}
	}
}

// Publish enqueues ev without blocking. It fails once the buffer is full
// or the dispatcher is closed.
func (d *Dispatcher) Publish(_ context.Context, ev BookingEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return errors.New("dispatcher closed")
	}
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrDispatcherFull
	}
}

// Close stops accepting events and waits until the buffered ones are sent
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeMu.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.events)
		d.mu.Unlock()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
