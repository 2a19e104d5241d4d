package engine

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/betengine/internal/domain"
	"github.com/alejandrodnm/betengine/internal/ports"
)

// Reconciler compara las órdenes resting de un runner contra los precios
// candidato recién calculados y decide colocar, reemplazar o no tocar nada.
type Reconciler struct {
	exec  ports.OrderExecutor
	stake float64
}

// NewReconciler crea un Reconciler que emite comandos por el executor dado.
func NewReconciler(exec ports.OrderExecutor, stake float64) *Reconciler {
	return &Reconciler{exec: exec, stake: stake}
}

// Reconcile procesa un runner para ambos lados y devuelve cuántas órdenes
// nuevas se colocaron (los reemplazos no cuentan: no crean un Trade nuevo).
//
// Reglas por lado:
//   - Sin órdenes previas y candidato presente → colocar limit al candidato.
//   - Orden executable y candidato estrictamente más agresivo (menor para
//     back, mayor para lay) → reemplazar preservando el tamaño.
//   - Candidato ausente, igual o peor → no tocar. Órdenes ya matcheadas
//     suprimen colocaciones nuevas en ese lado para el resto del mercado.
func (r *Reconciler) Reconcile(ctx context.Context, marketID string, runner domain.Runner, back, lay Candidate) int {
	hasBackBets, hasLayBets := false, false

	for _, order := range r.exec.SelectionOrders(marketID, runner.SelectionID, runner.Handicap) {
		switch order.Side {
		case domain.SideBack:
			hasBackBets = true
			if order.Executable() && back.OK && back.Price < order.Price {
				r.replace(ctx, order, back.Price)
			}
		case domain.SideLay:
			hasLayBets = true
			if order.Executable() && lay.OK && lay.Price > order.Price {
				r.replace(ctx, order, lay.Price)
			}
		}
	}

	placed := 0
	if !hasBackBets && back.OK {
		if r.place(ctx, marketID, runner, domain.SideBack, back.Price) {
			placed++
		}
	}
	if !hasLayBets && lay.OK {
		if r.place(ctx, marketID, runner, domain.SideLay, lay.Price) {
			placed++
		}
	}
	return placed
}

// place emite una orden limit nueva. Los errores se loguean y no se
// propagan: el comando es fire-and-forget.
func (r *Reconciler) place(ctx context.Context, marketID string, runner domain.Runner, side domain.Side, price float64) bool {
	trade := domain.NewTrade(marketID, runner.SelectionID, runner.Handicap)
	_, err := r.exec.PlaceOrder(ctx, domain.PlaceOrderRequest{
		Trade: trade,
		Side:  side,
		Type:  domain.TypeLimit,
		Price: price,
		Size:  r.stake,
	})
	if err != nil {
		slog.Warn("place order failed",
			"market_id", marketID,
			"selection_id", runner.SelectionID,
			"side", side,
			"price", price,
			"err", err,
		)
		return false
	}
	slog.Debug("placed order",
		"market_id", marketID,
		"selection_id", runner.SelectionID,
		"side", side,
		"price", price,
		"size", r.stake,
	)
	return true
}

func (r *Reconciler) replace(ctx context.Context, order domain.Order, newPrice float64) {
	if err := r.exec.ReplaceOrder(ctx, order.ID, newPrice); err != nil {
		slog.Warn("replace order failed",
			"market_id", order.MarketID,
			"order_id", order.ID,
			"new_price", newPrice,
			"err", err,
		)
		return
	}
	slog.Debug("replaced order",
		"market_id", order.MarketID,
		"selection_id", order.SelectionID,
		"side", order.Side,
		"old_price", order.Price,
		"new_price", newPrice,
	)
}
