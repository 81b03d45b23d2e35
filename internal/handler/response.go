package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// Response is the envelope every endpoint answers with. StatusCode mirrors
// the HTTP status; payload fields are present only when set.
type Response struct {
	StatusCode              int          `json:"statusCode"`
	Message                 string       `json:"message,omitempty"`
	Role                    string       `json:"role,omitempty"`
	Token                   string       `json:"token,omitempty"`
	ExpirationTime          string       `json:"expirationTime,omitempty"`
	BookingConfirmationCode string       `json:"bookingConfirmationCode,omitempty"`
	ClientSecret            string       `json:"clientSecret,omitempty"`
	User                    *UserDTO     `json:"user,omitempty"`
	Room                    *RoomDTO     `json:"room,omitempty"`
	Booking                 *BookingDTO  `json:"booking,omitempty"`
	UserList                []UserDTO    `json:"userList,omitempty"`
	RoomList                []RoomDTO    `json:"roomList,omitempty"`
	BookingList             []BookingDTO `json:"bookingList,omitempty"`
	RoomTypes               []string     `json:"roomTypes,omitempty"`
}

type UserDTO struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phoneNumber,omitempty"`
	Role        string       `json:"role"`
	Bookings    []BookingDTO `json:"bookings,omitempty"`
}

type RoomDTO struct {
	ID              uint64       `json:"id"`
	RoomType        string       `json:"roomType"`
	RoomPrice       json.Number  `json:"roomPrice"`
	RoomPhotoURL    string       `json:"roomPhotoUrl,omitempty"`
	RoomDescription string       `json:"roomDescription,omitempty"`
	Bookings        []BookingDTO `json:"bookings,omitempty"`
}

type BookingDTO struct {
	ID                      uint64      `json:"id"`
	RoomID                  uint64      `json:"roomId"`
	UserID                  uint64      `json:"userId"`
	CheckInDate             string      `json:"checkInDate"`
	CheckOutDate            string      `json:"checkOutDate"`
	NumOfAdults             int         `json:"numOfAdults"`
	NumOfChildren           int         `json:"numOfChildren"`
	TotalNumOfGuest         int         `json:"totalNumOfGuest"`
	BookingConfirmationCode string      `json:"bookingConfirmationCode"`
	Status                  string      `json:"status"`
	TotalPrice              json.Number `json:"totalPrice,omitempty"`
	Room                    *RoomDTO    `json:"room,omitempty"`
}

func toUser(u model.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber, Role: u.Role}
}

func toRoom(r model.Room) RoomDTO {
	return RoomDTO{
		ID:              r.ID,
		RoomType:        r.Type,
		RoomPrice:       json.Number(r.Price.StringFixed(2)),
		RoomPhotoURL:    r.PhotoURL,
		RoomDescription: r.Description,
	}
}

func toBooking(b model.Booking) BookingDTO {
	return BookingDTO{
		ID:                      b.ID,
		RoomID:                  b.RoomID,
		UserID:                  b.UserID,
		CheckInDate:             model.FormatDate(b.CheckIn),
		CheckOutDate:            model.FormatDate(b.CheckOut),
		NumOfAdults:             b.Adults,
		NumOfChildren:           b.Children,
		TotalNumOfGuest:         b.TotalGuests(),
		BookingConfirmationCode: b.ConfirmationCode,
		Status:                  b.Status,
	}
}

// pricedBooking is toBooking plus the stay total at the room's rate.
func pricedBooking(b model.Booking, r model.Room) BookingDTO {
	dto := toBooking(b)
	dto.TotalPrice = json.Number(b.Total(r.Price).StringFixed(2))
	return dto
}

func toRooms(rs []model.Room) []RoomDTO {
	out := make([]RoomDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRoom(r))
	}
	return out
}

func toBookings(bs []model.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBooking(b))
	}
	return out
}

func ok(c echo.Context, r Response) error {
	r.StatusCode = http.StatusOK
	if r.Message == "" {
		r.Message = "successful"
	}
	return c.JSON(http.StatusOK, r)
}

// fail maps err onto the envelope. Internal failures are logged with their
// cause and reported with a generic message.
func fail(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
	}
	return c.JSON(status, Response{StatusCode: status, Message: apperr.Message(err)})
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, apperr.Validation(msg))
}

func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// actor returns the caller verified by JWTAuth.
func actor(c echo.Context) (service.Actor, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id.UserID, Role: id.Role}, true
}

var errNoIdentity = apperr.New(apperr.KindAuth, "unauthenticated", "authentication required")
