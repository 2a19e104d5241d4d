package ports

import (
	"context"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// OrderExecutor es el colaborador de gestión de órdenes. Los comandos son
// fire-and-forget: el resultado de matching llega después por otro canal,
// nunca se espera de forma síncrona.
type OrderExecutor interface {
	// PlaceOrder emite una orden nueva y devuelve la orden registrada.
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error)

	// ReplaceOrder retira la orden existente y emite una nueva al precio
	// dado preservando su tamaño (cancel + recreate lógico).
	ReplaceOrder(ctx context.Context, orderID string, newPrice float64) error

	// SelectionOrders devuelve las órdenes de esta estrategia para un
	// (mercado, selección, handicap).
	SelectionOrders(marketID string, selectionID int64, handicap float64) []domain.Order

	// MarketOrders devuelve todas las órdenes de esta estrategia en el mercado.
	MarketOrders(marketID string) []domain.Order
}
