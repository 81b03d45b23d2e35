package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
)

// RegisterRooms mounts /rooms. Browsing is public and rate limited; the
// full list and the type list are served through the response cache, which
// room mutations invalidate. Add, update and delete need ADMIN.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, g Guards) {
	pub := e.Group("/rooms", g.limit())
	pub.GET("/all", h.All, g.cache())
	pub.GET("/types", h.Types, g.cache())
	pub.GET("/room-by-id/:roomId", h.ByID)
	pub.GET("/available-rooms-by-date-and-type", h.AvailableByDateAndType)
	pub.GET("/all-available-rooms", h.AllAvailable)

	adm := e.Group("/rooms", g.admin()...)
	adm.POST("/add", h.Add)
	adm.PUT("/update/:roomId", h.Update)
	adm.DELETE("/delete/:roomId", h.Delete)
}
