package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// DefaultLogPath is where consumed booking events are appended.
var DefaultLogPath = filepath.Join("logs", "booking.log")

// StartBookingConsumer connects to RabbitMQ, declares the booking queues
// and appends every delivered event to logPath. It reconnects with
// exponential backoff and never returns; run it in its own goroutine.
func StartBookingConsumer(url, logPath string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("booking-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(conn, logPath)
		_ = conn.Close()
		logrus.WithError(err).Warn("booking-consumer: consume loop ended; reconnecting")
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("booking-consumer: set QoS failed")
	}

	merged := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)
	for _, q := range []string{BookingConfirmedQueue, BookingCancelledQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		go func(in <-chan amqp.Delivery) {
			for d := range in {
				select {
				case merged <- d:
				case <-done:
					return
				}
			}
		}(msgs)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case d := <-merged:
			if err := handleMessage(d.Body, logPath); err != nil {
				logrus.WithError(err).Error("booking-consumer: handle message failed")
				_ = d.Nack(false, false) // drop; requeueing a bad payload would loop
				continue
			}
			_ = d.Ack(false)
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("channel closed")
		}
	}
}

func handleMessage(body []byte, logPath string) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return appendLine(logPath, FormatLogLine(ev))
}

// FormatLogLine renders ev as the single line written to the booking log.
func FormatLogLine(ev BookingEvent) string {
	verb := "Booking confirmed"
	if ev.Type == BookingCancelledQueue {
		verb = "Booking cancelled"
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | code=%s | user_id=%d | room_id=%d | stay=%s..%s | guests=%d+%d\n",
		ev.OccurredAt, verb, ev.BookingID, ev.ConfirmationCode, ev.UserID, ev.RoomID, ev.CheckIn, ev.CheckOut, ev.Adults, ev.Children)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
