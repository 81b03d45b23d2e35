package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
)

// PaymentGateway creates a payment intent for an amount in major currency
// units and returns the client secret used to confirm it.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal) (string, error)
}

// Payments fronts the gateway. An intent never creates, holds or cancels
// a booking.
type Payments struct {
	gateway PaymentGateway
}

// NewPayments fails every intent with a dependency error when g is nil.
func NewPayments(g PaymentGateway) *Payments { return &Payments{gateway: g} }

// CreateIntent validates amount and asks the gateway for a client secret.
func (p *Payments) CreateIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", apperr.Validation("amount must be greater than zero")
	}
	if p.gateway == nil {
		return "", apperr.Dependency("payments are not configured", nil)
	}
	secret, err := p.gateway.CreateIntent(ctx, amount.Round(2))
	if err != nil {
		logrus.WithError(err).Warn("create payment intent failed")
		return "", apperr.Dependency("failed to create payment intent", err)
	}
	return secret, nil
}
