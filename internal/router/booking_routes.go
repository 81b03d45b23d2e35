package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
)

// RegisterBookings mounts /bookings. The confirmation code lookup is the
// only public route.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, g Guards) {
	e.GET("/bookings/get-by-confirmation-code/:code", h.ByConfirmationCode, g.limit())

	grp := e.Group("/bookings", g.token())
	grp.POST("/book-room/:roomId/:userId", h.BookRoom)
	grp.DELETE("/cancel/:bookingId", h.Cancel)

	e.GET("/bookings/all", h.All, g.admin()...)
}

// RegisterPayments mounts /payments for authenticated users.
func RegisterPayments(e *echo.Echo, h *handler.PaymentHandler, g Guards) {
	grp := e.Group("/payments", g.token())
	grp.POST("/create-payment-intent", h.CreateIntent)
}
