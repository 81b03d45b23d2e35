// Package apperr defines the error taxonomy shared by services and
// handlers. Services return *Error values (or wrap the sentinels below)
// and the HTTP layer translates the Kind into a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react without string matching.
type Kind int

const (
	KindInternal    Kind = iota // unexpected failure, reported as 500
	KindValidation              // malformed input or invalid date range
	KindNotFound                // room, user, booking or code absent
	KindConflict                // unavailable range, duplicate email, double cancel
	KindAuth                    // bad credentials or invalid token
	KindForbidden               // authenticated but not allowed
	KindDependency              // blob store or payment gateway failure
	KindUnavailable             // storage busy or timed out; the caller may retry
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindDependency:
		return "dependency"
	case KindUnavailable:
		return "unavailable"
	}
	return "internal"
}

// Error carries a Kind, a client-facing message and an optional cause.
// Code is a stable machine-readable name such as "room_unavailable".
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and Code so sentinels compare with errors.Is
// even after being wrapped with extra context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New builds an *Error without a cause.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// Wrap attaches cause to a copy of base, keeping its Kind/Code/Msg.
func Wrap(base *Error, cause error) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Msg: base.Msg, Err: cause}
}

// Validation is shorthand for a KindValidation error with a custom message.
func Validation(msg string) *Error { return New(KindValidation, "validation_error", msg) }

// Dependency is shorthand for a failing external collaborator.
func Dependency(msg string, cause error) *Error {
	return &Error{Kind: KindDependency, Code: "dependency_error", Msg: msg, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err. Internal errors are
// reduced to a generic description so storage details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal server error"
}

// HTTPStatus maps an error to the status code reported by the API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindDependency:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Engine and identity sentinels.
var (
	ErrInvalidRange     = New(KindValidation, "invalid_range", "check-out date must be after check-in date and neither may be in the past")
	ErrRoomNotFound     = New(KindNotFound, "room_not_found", "room not found")
	ErrUserNotFound     = New(KindNotFound, "user_not_found", "user not found")
	ErrBookingNotFound  = New(KindNotFound, "booking_not_found", "booking not found")
	ErrRoomUnavailable  = New(KindConflict, "room_unavailable", "room not available for the selected date range")
	ErrAlreadyCancelled = New(KindConflict, "already_cancelled", "booking is already cancelled")
	ErrEmailTaken       = New(KindConflict, "email_taken", "email already exists")
	ErrRoomHasBookings  = New(KindConflict, "room_has_bookings", "room has upcoming confirmed bookings")
	ErrUserHasBookings  = New(KindConflict, "user_has_bookings", "user has upcoming confirmed bookings")
	ErrBadCredentials   = New(KindAuth, "bad_credentials", "invalid email or password")
	ErrForbidden        = New(KindForbidden, "forbidden", "forbidden")
	ErrBusy             = New(KindUnavailable, "storage_busy", "storage is busy, retry the request")
)
