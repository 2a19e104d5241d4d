package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/betengine/internal/domain"
)

func testPaper() *Paper {
	p := NewPaper()
	p.now = func() time.Time { return time.Date(2020, 8, 29, 2, 29, 0, 0, time.UTC) }
	return p
}

func backRequest(marketID string, selectionID int64, price float64) domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		Trade: domain.NewTrade(marketID, selectionID, 0),
		Side:  domain.SideBack,
		Type:  domain.TypeLimit,
		Price: price,
		Size:  10,
	}
}

func TestPlaceOrderRegistersExecutable(t *testing.T) {
	p := testPaper()

	req := backRequest("1.100", 101, 4.0)
	order, err := p.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, req.Trade.ID, order.TradeID)
	assert.Equal(t, "1.100", order.MarketID)
	assert.Equal(t, int64(101), order.SelectionID)
	assert.Equal(t, domain.SideBack, order.Side)
	assert.Equal(t, 4.0, order.Price)
	assert.Equal(t, 10.0, order.Size)
	assert.Equal(t, domain.OrderExecutable, order.Status)
	assert.Equal(t, time.Date(2020, 8, 29, 2, 29, 0, 0, time.UTC), order.PlacedAt)

	orders := p.SelectionOrders("1.100", 101, 0)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestReplaceOrderCancelsAndRecreates(t *testing.T) {
	p := testPaper()

	order, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	require.NoError(t, err)

	require.NoError(t, p.ReplaceOrder(context.Background(), order.ID, 3.8))

	orders := p.SelectionOrders("1.100", 101, 0)
	require.Len(t, orders, 2)

	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, domain.OrderCancelled, orders[0].Status)
	assert.Equal(t, 4.0, orders[0].Price)

	assert.NotEqual(t, order.ID, orders[1].ID)
	assert.Equal(t, domain.OrderExecutable, orders[1].Status)
	assert.Equal(t, 3.8, orders[1].Price)
	assert.Equal(t, order.TradeID, orders[1].TradeID)
	assert.Equal(t, order.Size, orders[1].Size)
	assert.Zero(t, orders[1].SizeMatched)
}

func TestReplaceOrderUnknownID(t *testing.T) {
	p := testPaper()

	err := p.ReplaceOrder(context.Background(), "no-such-order", 3.8)
	assert.ErrorContains(t, err, "unknown order")
}

func TestReplaceOrderRejectsNonExecutable(t *testing.T) {
	p := testPaper()

	order, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	require.NoError(t, err)
	require.NoError(t, p.ApplyFill(order.ID, 10))

	err = p.ReplaceOrder(context.Background(), order.ID, 3.8)
	assert.ErrorContains(t, err, "EXECUTION_COMPLETE")
}

func TestApplyFillMarksComplete(t *testing.T) {
	p := testPaper()

	order, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	require.NoError(t, err)

	require.NoError(t, p.ApplyFill(order.ID, 4))
	orders := p.SelectionOrders("1.100", 101, 0)
	require.Len(t, orders, 1)
	assert.Equal(t, 4.0, orders[0].SizeMatched)
	assert.Equal(t, domain.OrderExecutable, orders[0].Status)

	require.NoError(t, p.ApplyFill(order.ID, 10))
	orders = p.SelectionOrders("1.100", 101, 0)
	assert.Equal(t, domain.OrderComplete, orders[0].Status)
}

func TestApplyFillLimitOnCloseAlwaysCompletes(t *testing.T) {
	p := testPaper()

	order, err := p.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		Trade:     domain.NewTrade("1.100", 101, 0),
		Side:      domain.SideLay,
		Type:      domain.TypeLimitOnClose,
		Price:     3.65,
		Liability: 32,
	})
	require.NoError(t, err)

	// Las LOC se liquidan al cierre por el monto que el BSP permita.
	require.NoError(t, p.ApplyFill(order.ID, 7.62))
	orders := p.SelectionOrders("1.100", 101, 0)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderComplete, orders[0].Status)
}

func TestMarketOrdersScopedByMarket(t *testing.T) {
	p := testPaper()

	_, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	require.NoError(t, err)
	_, err = p.PlaceOrder(context.Background(), backRequest("1.100", 102, 5.0))
	require.NoError(t, err)
	_, err = p.PlaceOrder(context.Background(), backRequest("1.200", 101, 2.0))
	require.NoError(t, err)

	assert.Len(t, p.MarketOrders("1.100"), 2)
	assert.Len(t, p.MarketOrders("1.200"), 1)
	assert.Empty(t, p.MarketOrders("1.300"))
}

func TestSelectionOrdersDistinguishesHandicap(t *testing.T) {
	p := testPaper()

	reqA := backRequest("1.100", 101, 4.0)
	reqB := domain.PlaceOrderRequest{
		Trade: domain.NewTrade("1.100", 101, -1.5),
		Side:  domain.SideBack,
		Type:  domain.TypeLimit,
		Price: 6.0,
		Size:  10,
	}
	_, err := p.PlaceOrder(context.Background(), reqA)
	require.NoError(t, err)
	_, err = p.PlaceOrder(context.Background(), reqB)
	require.NoError(t, err)

	assert.Len(t, p.SelectionOrders("1.100", 101, 0), 1)
	assert.Len(t, p.SelectionOrders("1.100", 101, -1.5), 1)
}

func TestSelectionOrdersReturnsCopies(t *testing.T) {
	p := testPaper()

	order, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	require.NoError(t, err)

	orders := p.SelectionOrders("1.100", 101, 0)
	orders[0].Status = domain.OrderCancelled

	require.NoError(t, p.ReplaceOrder(context.Background(), order.ID, 3.8))
}

func TestCommandRateLimit(t *testing.T) {
	p := NewPaperLimited(rate.NewLimiter(0, 0))

	_, err := p.PlaceOrder(context.Background(), backRequest("1.100", 101, 4.0))
	assert.ErrorContains(t, err, "rate limit")
}
