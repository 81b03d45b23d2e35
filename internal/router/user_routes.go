package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
)

// RegisterUsers mounts /users. Listing, lookup and deletion need ADMIN;
// profile reads need a token and are scoped to the caller by the handler.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, g Guards) {
	adm := e.Group("/users", g.admin()...)
	adm.GET("/all", h.All)
	adm.GET("/get-by-id/:userId", h.ByID)
	adm.DELETE("/delete/:userId", h.Delete)

	grp := e.Group("/users", g.token())
	grp.GET("/get-user-booking/:userId", h.Bookings)
	grp.GET("/get-logged-in-profile-info", h.Me)
}
