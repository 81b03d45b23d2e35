// Package repository holds the persistence layer. Each store is exposed as
// an interface so services can run against MySQL in production and the
// in-memory implementation in tests. The sentinel values below are shared
// by every implementation; services translate them into apperr kinds.
package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist (or has
// been soft-deleted).
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a delete cannot proceed because of dependent
// state, such as a room that still has upcoming confirmed bookings.
var ErrConflict = errors.New("conflict")

// ErrDuplicate signals a unique-key collision on a generated value such as
// a booking confirmation code. Callers regenerate and retry.
var ErrDuplicate = errors.New("duplicate key")

// ErrEmailExists is returned when registering an email already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyCancelled is returned by Cancel when the booking is not CONFIRMED.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrBusy is returned when storage could not complete the operation in
// time (lock wait timeout, deadlock after retries, context deadline). The
// transaction was rolled back and the caller may retry.
var ErrBusy = errors.New("storage busy")

// MySQL server error numbers the repositories react to.
const (
	mysqlDupEntry        = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isRetryable reports whether err is a transient lock failure worth retrying.
func isRetryable(err error) bool {
	n := mysqlErrNumber(err)
	return n == mysqlDeadlock || n == mysqlLockWaitTimeout
}

// translate maps driver level errors to the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case mysqlErrNumber(err) == mysqlDupEntry:
		return ErrDuplicate
	case isRetryable(err), errors.Is(err, context.DeadlineExceeded):
		return ErrBusy
	}
	return err
}
