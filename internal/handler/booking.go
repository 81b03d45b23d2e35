package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// BookingHandler exposes the reservation ledger.
type BookingHandler struct {
	Ledger  *service.ReservationLedger
	Catalog *service.RoomCatalog
}

// NewBookingHandler wires the ledger and the catalog into HTTP handlers.
func NewBookingHandler(ledger *service.ReservationLedger, catalog *service.RoomCatalog) *BookingHandler {
	return &BookingHandler{Ledger: ledger, Catalog: catalog}
}

type bookRoomReq struct {
	CheckInDate   string `json:"checkInDate" validate:"required"`
	CheckOutDate  string `json:"checkOutDate" validate:"required"`
	NumOfAdults   int    `json:"numOfAdults" validate:"gte=1"`
	NumOfChildren int    `json:"numOfChildren" validate:"gte=0"`
}

// BookRoom reserves :roomId for :userId. Only that user or an ADMIN may
// book on the user's behalf.
func (h *BookingHandler) BookRoom(c echo.Context) error {
	who, found := actor(c)
	if !found {
		return fail(c, errNoIdentity)
	}
	roomID, err := paramID(c, "roomId")
	if err != nil {
		return fail(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return fail(c, err)
	}
	if !who.IsAdmin() && who.UserID != userID {
		return fail(c, apperr.ErrForbidden)
	}

	var req bookRoomReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	in, err := model.ParseDate(req.CheckInDate)
	if err != nil {
		return badRequest(c, "checkInDate must be YYYY-MM-DD")
	}
	out, err := model.ParseDate(req.CheckOutDate)
	if err != nil {
		return badRequest(c, "checkOutDate must be YYYY-MM-DD")
	}

	b, err := h.Ledger.Reserve(c.Request().Context(), service.ReserveRequest{
		RoomID:   roomID,
		UserID:   userID,
		CheckIn:  in,
		CheckOut: out,
		Adults:   req.NumOfAdults,
		Children: req.NumOfChildren,
	})
	if err != nil {
		return fail(c, err)
	}
	dto := toBooking(b)
	if rm, err := h.Catalog.Room(c.Request().Context(), roomID); err == nil {
		dto = pricedBooking(b, rm)
	}
	return ok(c, Response{BookingConfirmationCode: b.ConfirmationCode, Booking: &dto})
}

// Cancel cancels :bookingId for its owner or an ADMIN.
func (h *BookingHandler) Cancel(c echo.Context) error {
	who, found := actor(c)
	if !found {
		return fail(c, errNoIdentity)
	}
	id, err := paramID(c, "bookingId")
	if err != nil {
		return fail(c, err)
	}
	b, err := h.Ledger.CancelAs(c.Request().Context(), id, who)
	if err != nil {
		return fail(c, err)
	}
	dto := toBooking(b)
	return ok(c, Response{Booking: &dto})
}

// All lists every booking (ADMIN).
func (h *BookingHandler) All(c echo.Context) error {
	bs, err := h.Ledger.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{BookingList: toBookings(bs)})
}

// ByConfirmationCode is the public booking lookup. The room is attached
// when it still exists.
func (h *BookingHandler) ByConfirmationCode(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Ledger.FindByConfirmationCode(ctx, c.Param("code"))
	if err != nil {
		return fail(c, err)
	}
	dto := toBooking(b)
	if rm, err := h.Catalog.Room(ctx, b.RoomID); err == nil {
		dto = pricedBooking(b, rm)
		room := toRoom(rm)
		dto.Room = &room
	}
	return ok(c, Response{Booking: &dto})
}
