package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// ConciergeHandler answers guest chat and recommendation requests. The
// service never fails; the answer always goes in Message.
type ConciergeHandler struct {
	Concierge *service.Concierge
}

// NewConciergeHandler wires the concierge into HTTP handlers.
func NewConciergeHandler(cg *service.Concierge) *ConciergeHandler {
	return &ConciergeHandler{Concierge: cg}
}

type chatReq struct {
	Message string `json:"message" validate:"required"`
}

type recommendReq struct {
	Query string `json:"query" validate:"required"`
}

func (h *ConciergeHandler) Chat(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	return ok(c, Response{Message: h.Concierge.Chat(c.Request().Context(), req.Message)})
}

// RecommendRooms returns the ranking as a JSON string in Message.
func (h *ConciergeHandler) RecommendRooms(c echo.Context) error {
	var req recommendReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, err)
	}
	return ok(c, Response{Message: h.Concierge.RecommendRooms(c.Request().Context(), req.Query)})
}
