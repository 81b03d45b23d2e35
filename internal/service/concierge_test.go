package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
)

type fakeGen struct {
	reply  string
	err    error
	prompt string
}

func (g *fakeGen) Complete(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func TestConciergeChat(t *testing.T) {
	gen := &fakeGen{reply: "Check-in is at 2 PM."}
	c := NewConcierge(gen, nil)
	require.Equal(t, "Check-in is at 2 PM.", c.Chat(context.Background(), "when is check-in?"))
	require.True(t, strings.HasSuffix(gen.prompt, "User Question: when is check-in?"))

	gen.err = errors.New("quota")
	require.Equal(t, ChatFallback, c.Chat(context.Background(), "hi"))

	require.Equal(t, ChatFallback, NewConcierge(nil, nil).Chat(context.Background(), "hi"))
}

func TestConciergeRecommendations(t *testing.T) {
	catalog, _, _ := newCatalog(t, nil)
	gen := &fakeGen{reply: "```json\n{\"recommendations\":[{\"roomId\":1,\"matchScore\":90,\"reason\":\"fits\"}]}\n```"}
	c := NewConcierge(gen, catalog)

	out := c.RecommendRooms(context.Background(), "something cozy")
	require.Equal(t, `{"recommendations":[{"roomId":1,"matchScore":90,"reason":"fits"}]}`, out)
	require.Contains(t, gen.prompt, `"roomType":"Deluxe"`)
	require.Contains(t, gen.prompt, "User Request: something cozy")

	gen.err = errors.New("boom")
	require.Equal(t, RecommendationFallback, c.RecommendRooms(context.Background(), "x"))
}

type fakeGateway struct {
	amount decimal.Decimal
	err    error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount decimal.Decimal) (string, error) {
	g.amount = amount
	return "pi_secret_123", g.err
}

func TestPayments(t *testing.T) {
	gw := &fakeGateway{}
	p := NewPayments(gw)
	ctx := context.Background()

	secret, err := p.CreateIntent(ctx, decimal.RequireFromString("199.999"))
	require.NoError(t, err)
	require.Equal(t, "pi_secret_123", secret)
	require.Equal(t, "200.00", gw.amount.StringFixed(2))

	_, err = p.CreateIntent(ctx, decimal.Zero)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	gw.err = errors.New("card network down")
	_, err = p.CreateIntent(ctx, decimal.NewFromInt(10))
	require.Equal(t, apperr.KindDependency, apperr.KindOf(err))
}
