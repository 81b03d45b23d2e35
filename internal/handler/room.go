package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// RoomHandler serves the public room browse endpoints and the admin room
// management endpoints.
type RoomHandler struct {
	Catalog *service.RoomCatalog
	Engine  *service.AvailabilityEngine
}

// NewRoomHandler wires the catalog and the availability engine into HTTP handlers.
func NewRoomHandler(catalog *service.RoomCatalog, engine *service.AvailabilityEngine) *RoomHandler {
	return &RoomHandler{Catalog: catalog, Engine: engine}
}

// photoFrom opens the optional "photo" part of a multipart form. A missing
// part or a non-multipart body means no photo; a broken upload is an
// error. The returned release func is always safe to call.
func photoFrom(c echo.Context) (*service.Photo, func(), error) {
	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.Photo{Name: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p, nil
}

// Add creates a room from multipart fields roomType, roomPrice,
// roomDescription and an optional photo file.
func (h *RoomHandler) Add(c echo.Context) error {
	price, err := parsePrice(c.FormValue("roomPrice"))
	if err != nil {
		return badRequest(c, "roomPrice must be a decimal number")
	}
	photo, release, err := photoFrom(c)
	if err != nil {
		return badRequest(c, "could not read photo")
	}
	defer release()

	rm, err := h.Catalog.Add(c.Request().Context(), service.NewRoom{
		Type:        c.FormValue("roomType"),
		Price:       price,
		Description: c.FormValue("roomDescription"),
		Photo:       photo,
	})
	if err != nil {
		return fail(c, err)
	}
	dto := toRoom(rm)
	return ok(c, Response{Room: &dto})
}

// Update changes the fields present in the multipart form.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := paramID(c, "roomId")
	if err != nil {
		return fail(c, err)
	}
	var patch model.RoomPatch
	if v := c.FormValue("roomType"); v != "" {
		patch.Type = &v
	}
	if v := c.FormValue("roomDescription"); v != "" {
		patch.Description = &v
	}
	if v := c.FormValue("roomPrice"); v != "" {
		p, err := parsePrice(v)
		if err != nil {
			return badRequest(c, "roomPrice must be a decimal number")
		}
		patch.Price = &p
	}
	photo, release, err := photoFrom(c)
	if err != nil {
		return badRequest(c, "could not read photo")
	}
	defer release()

	rm, err := h.Catalog.Update(c.Request().Context(), id, patch, photo)
	if err != nil {
		return fail(c, err)
	}
	dto := toRoom(rm)
	return ok(c, Response{Room: &dto})
}

// Delete soft-deletes :roomId unless it has upcoming bookings.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "roomId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, Response{})
}

func (h *RoomHandler) All(c echo.Context) error {
	rooms, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{RoomList: toRooms(rooms)})
}

func (h *RoomHandler) Types(c echo.Context) error {
	types, err := h.Catalog.Types(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{RoomTypes: types})
}

// ByID returns a room together with its bookings.
func (h *RoomHandler) ByID(c echo.Context) error {
	id, err := paramID(c, "roomId")
	if err != nil {
		return fail(c, err)
	}
	rb, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	dto := toRoom(rb.Room)
	dto.Bookings = make([]BookingDTO, 0, len(rb.Bookings))
	for _, b := range rb.Bookings {
		dto.Bookings = append(dto.Bookings, pricedBooking(b, rb.Room))
	}
	return ok(c, Response{Room: &dto})
}

// AvailableByDateAndType lists rooms free for the query range
// checkInDate..checkOutDate, optionally narrowed by roomType.
func (h *RoomHandler) AvailableByDateAndType(c echo.Context) error {
	in, err := model.ParseDate(c.QueryParam("checkInDate"))
	if err != nil {
		return badRequest(c, "checkInDate must be YYYY-MM-DD")
	}
	out, err := model.ParseDate(c.QueryParam("checkOutDate"))
	if err != nil {
		return badRequest(c, "checkOutDate must be YYYY-MM-DD")
	}
	rooms, err := h.Engine.ListAvailable(c.Request().Context(), in, out, c.QueryParam("roomType"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{RoomList: toRooms(rooms)})
}

// AllAvailable lists rooms free tonight.
func (h *RoomHandler) AllAvailable(c echo.Context) error {
	rooms, err := h.Catalog.AvailableTonight(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{RoomList: toRooms(rooms)})
}
