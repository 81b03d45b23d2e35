package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
	"github.com/iliyamo/hotel-room-reservation/internal/repository/memory"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

type nopBlobs struct{}

func (nopBlobs) Store(_ context.Context, name string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "https://img.test/" + name, err
}

type app struct {
	t *testing.T
	e *echo.Echo
}

func newApp(t *testing.T) *app {
	t.Helper()
	now := func() time.Time { return testNow }
	st := memory.New()
	engine := service.NewAvailabilityEngine(st.Rooms(), st.Bookings(), now)
	ledger := service.NewReservationLedger(engine, st.Bookings(), st.Users())
	catalog := service.NewRoomCatalog(st.Rooms(), st.Bookings(), nopBlobs{}, engine, nil)
	codec := utils.NewTokenCodec("test-secret", utils.DefaultTokenTTL, now)
	auth := service.NewAuthenticator(st.Users(), codec, 4,
		service.WithRevocations(memory.NewRevocations(now)),
		service.WithAdminSignup(true),
		service.WithSubjectCheck(true),
	)

	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	g := Guards{Auth: auth}
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(auth, codec.TTL()), g)
	RegisterRooms(e, handler.NewRoomHandler(catalog, engine), g)
	RegisterBookings(e, handler.NewBookingHandler(ledger, catalog), g)
	RegisterUsers(e, handler.NewUserHandler(service.NewUserDirectory(st.Users(), ledger)), g)
	RegisterPayments(e, handler.NewPaymentHandler(service.NewPayments(nil)), g)
	RegisterConcierge(e, handler.NewConciergeHandler(service.NewConcierge(nil, catalog)), g)
	return &app{t: t, e: e}
}

func (a *app) do(req *http.Request, token string) (int, handler.Response) {
	a.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	var resp handler.Response
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.Equal(a.t, rec.Code, resp.StatusCode)
	return rec.Code, resp
}

func (a *app) json(method, path, token string, body any) (int, handler.Response) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return a.do(req, token)
}

func (a *app) form(method, path, token string, fields map[string]string, photo string) (int, handler.Response) {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	if photo != "" {
		fw, err := w.CreateFormFile("photo", photo)
		require.NoError(a.t, err)
		_, err = fw.Write([]byte("jpeg"))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return a.do(req, token)
}

// signup registers an account and logs it in, returning the token.
func (a *app) signup(name, email, role string) string {
	a.t.Helper()
	code, resp := a.json(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret", "role": role,
	})
	require.Equal(a.t, http.StatusOK, code, resp.Message)
	require.Equal(a.t, role, resp.User.Role)

	code, resp = a.json(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "secret"})
	require.Equal(a.t, http.StatusOK, code, resp.Message)
	require.Equal(a.t, "7 Days", resp.ExpirationTime)
	require.Equal(a.t, role, resp.Role)
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func (a *app) me(token string) handler.UserDTO {
	a.t.Helper()
	code, resp := a.json(http.MethodGet, "/users/get-logged-in-profile-info", token, nil)
	require.Equal(a.t, http.StatusOK, code, resp.Message)
	return *resp.User
}

func TestBookingLifecycle(t *testing.T) {
	a := newApp(t)
	admin := a.signup("Admin", "admin@example.com", "ADMIN")
	guest := a.signup("Guest", "guest@example.com", "USER")
	other := a.signup("Other", "other@example.com", "USER")
	guestID := a.me(guest).ID

	code, _ := a.form(http.MethodPost, "/rooms/add", guest, map[string]string{"roomType": "Deluxe", "roomPrice": "150"}, "")
	require.Equal(t, http.StatusForbidden, code)
	code, _ = a.form(http.MethodPost, "/rooms/add", "", map[string]string{"roomType": "Deluxe", "roomPrice": "150"}, "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, resp := a.form(http.MethodPost, "/rooms/add", admin, map[string]string{
		"roomType": "Deluxe", "roomPrice": "150", "roomDescription": "sea view",
	}, "room.jpg")
	require.Equal(t, http.StatusOK, code, resp.Message)
	room := resp.Room
	require.Equal(t, "150.00", room.RoomPrice.String())
	require.Equal(t, "https://img.test/room.jpg", room.RoomPhotoURL)

	code, resp = a.json(http.MethodGet, "/rooms/all", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.RoomList, 1)

	bookPath := "/bookings/book-room/" + itoa(room.ID) + "/" + itoa(guestID)
	code, resp = a.json(http.MethodPost, bookPath, guest, map[string]any{
		"checkInDate": "2026-01-10", "checkOutDate": "2026-01-12", "numOfAdults": 2, "numOfChildren": 1,
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.Len(t, resp.BookingConfirmationCode, 8)
	booking := resp.Booking
	require.Equal(t, 3, booking.TotalNumOfGuest)
	require.Equal(t, "300.00", booking.TotalPrice.String())

	t.Run("overlap rejected", func(t *testing.T) {
		code, resp := a.json(http.MethodPost, bookPath, guest, map[string]any{
			"checkInDate": "2026-01-11", "checkOutDate": "2026-01-13", "numOfAdults": 1,
		})
		require.Equal(t, http.StatusConflict, code, resp.Message)
	})

	t.Run("booking for someone else is forbidden", func(t *testing.T) {
		code, _ := a.json(http.MethodPost, bookPath, other, map[string]any{
			"checkInDate": "2026-02-01", "checkOutDate": "2026-02-02", "numOfAdults": 1,
		})
		require.Equal(t, http.StatusForbidden, code)
	})

	t.Run("lookup by code is public", func(t *testing.T) {
		code, resp := a.json(http.MethodGet, "/bookings/get-by-confirmation-code/"+strings.ToLower(booking.BookingConfirmationCode), "", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, booking.ID, resp.Booking.ID)
		require.NotNil(t, resp.Booking.Room)
		require.Equal(t, room.ID, resp.Booking.Room.ID)
	})

	t.Run("availability search", func(t *testing.T) {
		_, resp := a.json(http.MethodGet, "/rooms/available-rooms-by-date-and-type?checkInDate=2026-01-11&checkOutDate=2026-01-13&roomType=Deluxe", "", nil)
		require.Empty(t, resp.RoomList)
		_, resp = a.json(http.MethodGet, "/rooms/available-rooms-by-date-and-type?checkInDate=2026-01-12&checkOutDate=2026-01-13", "", nil)
		require.Len(t, resp.RoomList, 1)
		code, _ := a.json(http.MethodGet, "/rooms/available-rooms-by-date-and-type?checkInDate=2026-01-13&checkOutDate=2026-01-13", "", nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	code, _ = a.json(http.MethodDelete, "/rooms/delete/"+itoa(room.ID), admin, nil)
	require.Equal(t, http.StatusConflict, code)

	cancelPath := "/bookings/cancel/" + itoa(booking.ID)
	code, _ = a.json(http.MethodDelete, cancelPath, other, nil)
	require.Equal(t, http.StatusForbidden, code)
	code, resp = a.json(http.MethodDelete, cancelPath, guest, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.Equal(t, "CANCELLED", resp.Booking.Status)
	code, _ = a.json(http.MethodDelete, cancelPath, guest, nil)
	require.Equal(t, http.StatusConflict, code)

	code, _ = a.json(http.MethodDelete, "/rooms/delete/"+itoa(room.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = a.json(http.MethodGet, "/rooms/room-by-id/"+itoa(room.ID), "", nil)
	require.Equal(t, http.StatusNotFound, code)

	profile := a.me(guest)
	require.Len(t, profile.Bookings, 1)
	require.Equal(t, "CANCELLED", profile.Bookings[0].Status)

	code, resp = a.json(http.MethodGet, "/bookings/all", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.BookingList, 1)
	code, _ = a.json(http.MethodGet, "/bookings/all", guest, nil)
	require.Equal(t, http.StatusForbidden, code)
}

func TestBookRoomValidation(t *testing.T) {
	a := newApp(t)
	admin := a.signup("Admin", "admin@example.com", "ADMIN")
	guest := a.signup("Guest", "guest@example.com", "USER")
	guestID := a.me(guest).ID
	_, resp := a.form(http.MethodPost, "/rooms/add", admin, map[string]string{"roomType": "Suite", "roomPrice": "300"}, "")
	path := "/bookings/book-room/" + itoa(resp.Room.ID) + "/" + itoa(guestID)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"inverted range", map[string]any{"checkInDate": "2026-01-12", "checkOutDate": "2026-01-10", "numOfAdults": 1}, http.StatusBadRequest},
		{"past check-in", map[string]any{"checkInDate": "2025-12-30", "checkOutDate": "2026-01-02", "numOfAdults": 1}, http.StatusBadRequest},
		{"no adults", map[string]any{"checkInDate": "2026-01-10", "checkOutDate": "2026-01-12"}, http.StatusBadRequest},
		{"bad date", map[string]any{"checkInDate": "10/01/2026", "checkOutDate": "2026-01-12", "numOfAdults": 1}, http.StatusBadRequest},
		{"today is bookable", map[string]any{"checkInDate": "2026-01-01", "checkOutDate": "2026-01-02", "numOfAdults": 1}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := a.json(http.MethodPost, path, guest, tc.body)
			require.Equal(t, tc.want, code, resp.Message)
		})
	}

	code, _ := a.json(http.MethodPost, "/bookings/book-room/999/"+itoa(guestID), guest, map[string]any{
		"checkInDate": "2026-01-10", "checkOutDate": "2026-01-12", "numOfAdults": 1,
	})
	require.Equal(t, http.StatusNotFound, code)
}

func TestAuthEndpoints(t *testing.T) {
	a := newApp(t)
	token := a.signup("Guest", "guest@example.com", "USER")

	code, _ := a.json(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Again", "email": "GUEST@example.com", "password": "x",
	})
	require.Equal(t, http.StatusConflict, code)

	code, resp := a.json(http.MethodPost, "/auth/register", "", map[string]string{"email": "a@b.c", "password": "x"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "name is required", resp.Message)

	code, _ = a.json(http.MethodPost, "/auth/login", "", map[string]string{"email": "guest@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.json(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	code, resp = a.json(http.MethodGet, "/users/get-logged-in-profile-info", token, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "token has been revoked", resp.Message)
}

func TestUserAdministration(t *testing.T) {
	a := newApp(t)
	admin := a.signup("Admin", "admin@example.com", "ADMIN")
	guest := a.signup("Guest", "guest@example.com", "USER")
	guestID := a.me(guest).ID

	code, resp := a.json(http.MethodGet, "/users/all", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.UserList, 2)
	code, _ = a.json(http.MethodGet, "/users/all", guest, nil)
	require.Equal(t, http.StatusForbidden, code)

	code, resp = a.json(http.MethodGet, "/users/get-user-booking/"+itoa(guestID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "guest@example.com", resp.User.Email)

	code, _ = a.json(http.MethodDelete, "/users/delete/"+itoa(guestID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = a.json(http.MethodGet, "/users/get-by-id/"+itoa(guestID), admin, nil)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = a.json(http.MethodGet, "/users/get-logged-in-profile-info", guest, nil)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestCollaboratorFallbacks(t *testing.T) {
	a := newApp(t)
	guest := a.signup("Guest", "guest@example.com", "USER")

	code, resp := a.json(http.MethodPost, "/ai/chat", "", map[string]string{"message": "breakfast?"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, service.ChatFallback, resp.Message)

	code, resp = a.json(http.MethodPost, "/ai/recommend-rooms", "", map[string]string{"query": "quiet"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, service.RecommendationFallback, resp.Message)

	code, _ = a.json(http.MethodPost, "/payments/create-payment-intent", guest, map[string]any{"amount": 100})
	require.Equal(t, http.StatusBadGateway, code)
	code, _ = a.json(http.MethodPost, "/payments/create-payment-intent", "", map[string]any{"amount": 100})
	require.Equal(t, http.StatusUnauthorized, code)
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
