package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

type PaymentHandler struct {
	Payments *service.Payments
}

// NewPaymentHandler wires payments into HTTP handlers.
func NewPaymentHandler(p *service.Payments) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

// amount accepts both JSON numbers and numeric strings.
type paymentReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateIntent returns the client secret of a new payment intent.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "amount must be a decimal number")
	}
	secret, err := h.Payments.CreateIntent(c.Request().Context(), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, Response{Message: "Payment Intent Created", ClientSecret: secret})
}
