package engine

// bsp.go — camino alternativo de apuesta al starting price.
//
// En modo bsp no hay quoting continuo: por update se calculan precios
// límite tick-rounded y se emiten órdenes limit-on-close que el exchange
// matchea contra el BSP al cierre del mercado.

import (
	"context"
	"log/slog"
	"math"

	"github.com/alejandrodnm/betengine/internal/domain"
	"github.com/alejandrodnm/betengine/internal/ports"
)

// minLayLiability es la liability mínima que acepta el venue en órdenes
// lay al starting price.
const minLayLiability = 30.0

// StartingPriceController coloca órdenes limit-on-close al starting price
// proyectado. Reemplaza por completo al Reconciler cuando el staking es bsp.
type StartingPriceController struct {
	exec   ports.OrderExecutor
	stake  float64
	margin float64

	minBack, maxBack float64
	minLay, maxLay   float64
}

// NewStartingPriceController construye el controller a partir del pricer
// (margin y bounds) y el stake configurado.
func NewStartingPriceController(exec ports.OrderExecutor, stake float64, pricer Pricer) *StartingPriceController {
	return &StartingPriceController{
		exec:    exec,
		stake:   stake,
		margin:  pricer.Margin,
		minBack: pricer.MinBack,
		maxBack: pricer.MaxBack,
		minLay:  pricer.MinLay,
		maxLay:  pricer.MaxLay,
	}
}

// Place evalúa un runner y emite hasta dos órdenes limit-on-close (back y
// lay, independientes). Devuelve cuántas colocó.
//
// tradeCount es el contador de trades previos del runner: con contador en
// cero el runner se salta y no se coloca nada en este update.
func (c *StartingPriceController) Place(ctx context.Context, marketID string, runner domain.Runner, probability float64, tradeCount int) int {
	if tradeCount == 0 {
		return 0
	}

	// Sin precio en alguno de los dos lados no hay proyección posible.
	if !runner.HasBack() || !runner.HasLay() {
		return 0
	}

	// TODO: mejorar la proyección del BSP usando los volúmenes disponibles.
	projectedBSP := (runner.BestBack + runner.BestLay) / 2

	limitBack := domain.NearestTick((1 / probability) * (1 + c.margin))
	limitLay := domain.NearestTick((1 / probability) / (1 + c.margin))

	layLiability := math.Round((projectedBSP-1)*c.stake*100) / 100
	if layLiability < minLayLiability {
		layLiability = minLayLiability
	}

	placed := 0
	if c.minBack <= limitBack && limitBack <= c.maxBack {
		if c.place(ctx, marketID, runner, domain.SideBack, limitBack, c.stake) {
			placed++
		}
	}
	if c.minLay <= limitLay && limitLay <= c.maxLay {
		if c.place(ctx, marketID, runner, domain.SideLay, limitLay, layLiability) {
			placed++
		}
	}
	return placed
}

func (c *StartingPriceController) place(ctx context.Context, marketID string, runner domain.Runner, side domain.Side, price, liability float64) bool {
	trade := domain.NewTrade(marketID, runner.SelectionID, runner.Handicap)
	_, err := c.exec.PlaceOrder(ctx, domain.PlaceOrderRequest{
		Trade:     trade,
		Side:      side,
		Type:      domain.TypeLimitOnClose,
		Price:     price,
		Liability: liability,
	})
	if err != nil {
		slog.Warn("place BSP order failed",
			"market_id", marketID,
			"selection_id", runner.SelectionID,
			"side", side,
			"price", price,
			"err", err,
		)
		return false
	}
	slog.Debug("placed BSP order",
		"market_id", marketID,
		"selection_id", runner.SelectionID,
		"side", side,
		"price", price,
		"liability", liability,
	)
	return true
}
