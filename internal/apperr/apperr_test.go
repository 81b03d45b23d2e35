package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reserve: %w", Wrap(ErrBusy, errors.New("Error 1213: deadlock")))
	require.ErrorIs(t, err, ErrBusy)
	require.NotErrorIs(t, err, ErrRoomUnavailable)
	require.Equal(t, KindUnavailable, KindOf(err))
	require.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	require.Equal(t, ErrBusy.Msg, Message(err))
}

func TestHTTPStatusPerKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidRange, http.StatusBadRequest},
		{Validation("bad"), http.StatusBadRequest},
		{ErrBookingNotFound, http.StatusNotFound},
		{ErrEmailTaken, http.StatusConflict},
		{ErrAlreadyCancelled, http.StatusConflict},
		{ErrBadCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{Dependency("stripe down", errors.New("timeout")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.err), func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	require.Equal(t, "internal server error", Message(errors.New("sql: connection refused")))
	require.Equal(t, "internal server error", Message(New(KindInternal, "x", "secret detail")))
	dep := Dependency("payment provider unavailable", errors.New("401 invalid api key"))
	require.Equal(t, "payment provider unavailable", Message(dep))
	require.Contains(t, dep.Error(), "401 invalid api key")
}
