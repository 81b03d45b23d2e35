package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// UserHandler serves admin user management and profile reads.
type UserHandler struct {
	Users *service.UserDirectory
}

// NewUserHandler wires the user directory into HTTP handlers.
func NewUserHandler(users *service.UserDirectory) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) All(c echo.Context) error {
	us, err := h.Users.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]UserDTO, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return ok(c, Response{UserList: out})
}

func (h *UserHandler) ByID(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return fail(c, err)
	}
	u, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	dto := toUser(u)
	return ok(c, Response{User: &dto})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, Response{})
}

// Bookings returns :userId with their bookings; callers other than the
// user need the ADMIN role.
func (h *UserHandler) Bookings(c echo.Context) error {
	who, found := actor(c)
	if !found {
		return fail(c, errNoIdentity)
	}
	id, err := paramID(c, "userId")
	if err != nil {
		return fail(c, err)
	}
	return h.profile(c, id, who)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	who, found := actor(c)
	if !found {
		return fail(c, errNoIdentity)
	}
	return h.profile(c, who.UserID, who)
}

func (h *UserHandler) profile(c echo.Context, id uint64, who service.Actor) error {
	p, err := h.Users.Profile(c.Request().Context(), id, who)
	if err != nil {
		return fail(c, err)
	}
	dto := toUser(p.User)
	dto.Bookings = toBookings(p.Bookings)
	return ok(c, Response{User: &dto})
}
