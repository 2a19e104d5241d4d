package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/alejandrodnm/betengine/internal/domain"
	"github.com/alejandrodnm/betengine/internal/ports"
)

// Config contiene los parámetros de la estrategia ya validados.
type Config struct {
	Staking        domain.StakingStrategy
	Stake          float64
	Margin         float64
	SecondsToStart float64
	MinBackPrice   float64
	MaxBackPrice   float64
	MinLayPrice    float64
	MaxLayPrice    float64
}

// runnerKey identifica el contexto de un runner dentro de un mercado.
type runnerKey struct {
	marketID    string
	selectionID int64
	handicap    float64
}

// Engine es el orquestador de decisiones: por cada snapshot aplica el
// pre-filtro, valida las probabilidades del mercado y despacha cada runner
// activo al Reconciler o al StartingPriceController según el staking.
// Al cierre del mercado liquida exactamente una vez.
//
// Los snapshots de un mismo mercado deben llegar en orden estricto; el
// único estado compartido entre mercados es la cache de probabilidades.
type Engine struct {
	cfg      Config
	probs    *ProbabilityModel
	pricer   Pricer
	rec      *Reconciler
	bsp      *StartingPriceController
	exec     ports.OrderExecutor
	notifier ports.Notifier

	tradeCounts map[runnerKey]int
	settled     map[string]bool
}

// New crea el Engine con todas las dependencias inyectadas.
func New(cfg Config, exec ports.OrderExecutor, notifier ports.Notifier) *Engine {
	pricer := Pricer{
		Staking: cfg.Staking,
		Margin:  cfg.Margin,
		MinBack: cfg.MinBackPrice,
		MaxBack: cfg.MaxBackPrice,
		MinLay:  cfg.MinLayPrice,
		MaxLay:  cfg.MaxLayPrice,
	}
	return &Engine{
		cfg:         cfg,
		probs:       NewProbabilityModel(),
		pricer:      pricer,
		rec:         NewReconciler(exec, cfg.Stake),
		bsp:         NewStartingPriceController(exec, cfg.Stake, pricer),
		exec:        exec,
		notifier:    notifier,
		tradeCounts: make(map[runnerKey]int),
		settled:     make(map[string]bool),
	}
}

// Run consume la fuente de snapshots hasta agotarla o cancelar el contexto.
func (e *Engine) Run(ctx context.Context, src ports.SnapshotSource) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap, ok, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("engine.Run: next snapshot: %w", err)
		}
		if !ok {
			return nil
		}
		e.Process(ctx, snap)
	}
}

// Process procesa un snapshot de mercado: liquidación si el mercado cerró,
// pre-filtro y decisión de pricing en caso contrario.
func (e *Engine) Process(ctx context.Context, snap domain.MarketSnapshot) {
	if snap.Status == domain.MarketClosed {
		e.settle(ctx, snap)
		return
	}

	if !e.shouldProcess(snap) {
		return
	}

	active := snap.ActiveRunners()
	probs := e.probs.GetOrCreate(snap.MarketID, active)
	if len(probs) != active {
		// El número de runners activos cambió tras generar el vector:
		// nunca reindexar, saltar el update entero.
		slog.Warn("probability vector length mismatch",
			"market_id", snap.MarketID,
			"vector_len", len(probs),
			"active_runners", active,
		)
		return
	}

	// Validar todas las probabilidades antes de cualquier división.
	idx := 0
	for _, r := range snap.Runners {
		if r.Status != domain.RunnerActive {
			continue
		}
		p := probs[idx]
		idx++
		if math.IsNaN(p) || p == 0 {
			slog.Warn("invalid runner probability",
				"market_id", snap.MarketID,
				"selection_id", r.SelectionID,
				"probability", p,
			)
			return
		}
	}

	idx = 0
	for _, r := range snap.Runners {
		if r.Status != domain.RunnerActive {
			continue
		}
		p := probs[idx]
		idx++

		key := runnerKey{snap.MarketID, r.SelectionID, r.Handicap}
		if e.cfg.Staking == domain.StakingBSP {
			e.tradeCounts[key] += e.bsp.Place(ctx, snap.MarketID, r, p, e.tradeCounts[key])
			continue
		}

		back := e.pricer.BackCandidate(p, r.BestBack, r.BestLay)
		lay := e.pricer.LayCandidate(p, r.BestBack, r.BestLay)
		e.tradeCounts[key] += e.rec.Reconcile(ctx, snap.MarketID, r, back, lay)
	}
}

// shouldProcess es el pre-filtro: solo mercados abiertos, pre-juego, con
// entre 2 y 8 runners activos y dentro de la ventana de trading.
func (e *Engine) shouldProcess(snap domain.MarketSnapshot) bool {
	if snap.Status != domain.MarketOpen {
		slog.Debug("skip market: not open", "market_id", snap.MarketID, "status", snap.Status)
		return false
	}
	if snap.InPlay {
		slog.Debug("skip market: in-play", "market_id", snap.MarketID)
		return false
	}
	active := snap.ActiveRunners()
	if active < 2 || active > 8 {
		slog.Debug("skip market: active runners out of range",
			"market_id", snap.MarketID,
			"active_runners", active,
		)
		return false
	}
	if snap.SecondsToStart > e.cfg.SecondsToStart {
		slog.Debug("skip market: before trading window",
			"market_id", snap.MarketID,
			"seconds_to_start", snap.SecondsToStart,
		)
		return false
	}
	return true
}

// settle liquida el mercado exactamente una vez y reporta el ledger.
func (e *Engine) settle(ctx context.Context, snap domain.MarketSnapshot) {
	if e.settled[snap.MarketID] {
		return
	}
	e.settled[snap.MarketID] = true

	ledger := domain.Settle(snap, e.exec.MarketOrders(snap.MarketID))
	if err := e.notifier.NotifySettlement(ctx, ledger); err != nil {
		slog.Warn("notifier error", "market_id", snap.MarketID, "err", err)
	}
}
