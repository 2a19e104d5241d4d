package exchange

// paper.go — executor de órdenes en papel.
//
// Registra los comandos del engine en un blotter en memoria sin simular
// matching: los fills llegan desde fuera vía ApplyFill, igual que en el
// exchange real llegan por el stream de órdenes. Reemplazar es un cancel +
// recreate: la orden vieja queda CANCELLED y aparece una nueva con otro ID.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// El venue cobra cargos por transacción a partir de cierto volumen de
// comandos; el limiter por defecto queda muy por debajo.
const (
	defaultCommandsPerSec = 100
	defaultCommandBurst   = 200
)

// Paper implementa ports.OrderExecutor con un blotter en memoria.
type Paper struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	orders  []*domain.Order
	byID    map[string]*domain.Order
	now     func() time.Time
}

// NewPaper crea el executor con el rate limit de comandos por defecto.
func NewPaper() *Paper {
	return NewPaperLimited(rate.NewLimiter(defaultCommandsPerSec, defaultCommandBurst))
}

// NewPaperLimited crea el executor con un limiter propio (tests).
func NewPaperLimited(limiter *rate.Limiter) *Paper {
	return &Paper{
		limiter: limiter,
		byID:    make(map[string]*domain.Order),
		now:     time.Now,
	}
}

// PlaceOrder registra una orden nueva en estado EXECUTABLE.
func (p *Paper) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("exchange.PlaceOrder: rate limit: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	order := &domain.Order{
		ID:          uuid.New().String(),
		TradeID:     req.Trade.ID,
		MarketID:    req.Trade.MarketID,
		SelectionID: req.Trade.SelectionID,
		Handicap:    req.Trade.Handicap,
		Side:        req.Side,
		Type:        req.Type,
		Price:       req.Price,
		Size:        req.Size,
		Liability:   req.Liability,
		Status:      domain.OrderExecutable,
		PlacedAt:    p.now(),
	}
	p.orders = append(p.orders, order)
	p.byID[order.ID] = order
	return *order, nil
}

// ReplaceOrder cancela la orden existente y registra una nueva al precio
// dado, preservando tamaño, liability y trade.
func (p *Paper) ReplaceOrder(ctx context.Context, orderID string, newPrice float64) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("exchange.ReplaceOrder: rate limit: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old, ok := p.byID[orderID]
	if !ok {
		return fmt.Errorf("exchange.ReplaceOrder: unknown order %q", orderID)
	}
	if !old.Executable() {
		return fmt.Errorf("exchange.ReplaceOrder: order %q is %s", orderID, old.Status)
	}

	old.Status = domain.OrderCancelled

	replacement := *old
	replacement.ID = uuid.New().String()
	replacement.Price = newPrice
	replacement.SizeMatched = 0
	replacement.Status = domain.OrderExecutable
	replacement.PlacedAt = p.now()

	p.orders = append(p.orders, &replacement)
	p.byID[replacement.ID] = &replacement
	return nil
}

// SelectionOrders devuelve las órdenes de un (mercado, selección, handicap),
// incluidas las canceladas y matcheadas.
func (p *Paper) SelectionOrders(marketID string, selectionID int64, handicap float64) []domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.Order
	for _, o := range p.orders {
		if o.MarketID == marketID && o.SelectionID == selectionID && o.Handicap == handicap {
			out = append(out, *o)
		}
	}
	return out
}

// MarketOrders devuelve todas las órdenes del mercado.
func (p *Paper) MarketOrders(marketID string) []domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.Order
	for _, o := range p.orders {
		if o.MarketID == marketID {
			out = append(out, *o)
		}
	}
	return out
}

// ApplyFill registra un fill llegado del canal externo de updates.
func (p *Paper) ApplyFill(orderID string, matchedSize float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.byID[orderID]
	if !ok {
		return fmt.Errorf("exchange.ApplyFill: unknown order %q", orderID)
	}

	order.SizeMatched = matchedSize
	if order.Type == domain.TypeLimitOnClose || matchedSize >= order.Size {
		order.Status = domain.OrderComplete
	}
	return nil
}
