package integration

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway creates Stripe payment intents.
type StripeGateway struct {
	sc       *client.API
	currency string
}

// NewStripeGateway creates intents in currency with the given secret key.
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	if currency == "" {
		currency = "inr"
	}
	return &StripeGateway{sc: client.New(secretKey, nil), currency: currency}
}

// minorUnits converts a major-unit amount into the integer Stripe expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent returns the client secret of a new automatic-payment intent.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(amount)),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: %w", err)
	}
	return pi.ClientSecret, nil
}
