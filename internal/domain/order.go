package domain

import (
	"time"

	"github.com/google/uuid"
)

// Side es el lado de una apuesta.
type Side string

const (
	SideBack Side = "BACK"
	SideLay  Side = "LAY"
)

// OrderStatus es el estado de una orden en el exchange.
type OrderStatus string

const (
	// OrderExecutable sigue viva en el book, total o parcialmente sin matchear.
	OrderExecutable OrderStatus = "EXECUTABLE"
	// OrderComplete está completamente matcheada.
	OrderComplete OrderStatus = "EXECUTION_COMPLETE"
	// OrderCancelled fue retirada (eg. reemplazada por una nueva).
	OrderCancelled OrderStatus = "CANCELLED"
)

// OrderType es el tipo de orden soportado.
type OrderType string

const (
	// TypeLimit es una orden límite normal en el book.
	TypeLimit OrderType = "LIMIT"
	// TypeLimitOnClose se matchea contra el starting price al cierre.
	TypeLimitOnClose OrderType = "LIMIT_ON_CLOSE"
)

// Trade agrupa las órdenes de un intento de apuesta sobre un
// (mercado, selección, handicap). Se crea uno nuevo por cada intento.
type Trade struct {
	ID          string
	MarketID    string
	SelectionID int64
	Handicap    float64
}

// NewTrade crea un Trade con ID local único.
func NewTrade(marketID string, selectionID int64, handicap float64) Trade {
	return Trade{
		ID:          uuid.New().String(),
		MarketID:    marketID,
		SelectionID: selectionID,
		Handicap:    handicap,
	}
}

// Order es una orden de este engine tal como la conoce el blotter.
// El engine la crea; el exchange la muta al matchear. Reemplazar una orden
// es un cancel + recreate lógico, nunca una mutación de precio in-place.
type Order struct {
	ID          string
	TradeID     string
	MarketID    string
	SelectionID int64
	Handicap    float64
	Side        Side
	Type        OrderType
	// Price es el precio límite (un tick válido del ladder).
	Price float64
	// Size es el stake para órdenes LIMIT.
	Size float64
	// Liability es la exposición para órdenes LIMIT_ON_CLOSE.
	Liability   float64
	SizeMatched float64
	Status      OrderStatus
	PlacedAt    time.Time
}

// Executable devuelve true si la orden sigue viva en el book.
func (o Order) Executable() bool { return o.Status == OrderExecutable }

// PlaceOrderRequest es el comando de colocación que el engine emite al
// colaborador de gestión de órdenes.
type PlaceOrderRequest struct {
	Trade Trade
	Side  Side
	Type  OrderType
	Price float64
	// Size para LIMIT, Liability para LIMIT_ON_CLOSE.
	Size      float64
	Liability float64
}
