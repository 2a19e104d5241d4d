package domain

import "fmt"

// MarketStatus es el estado del mercado según el exchange.
type MarketStatus string

const (
	MarketOpen      MarketStatus = "OPEN"
	MarketSuspended MarketStatus = "SUSPENDED"
	MarketClosed    MarketStatus = "CLOSED"
	MarketInactive  MarketStatus = "INACTIVE"
)

// Valid devuelve true si el estado es uno de los conocidos.
func (s MarketStatus) Valid() bool {
	switch s {
	case MarketOpen, MarketSuspended, MarketClosed, MarketInactive:
		return true
	}
	return false
}

// RunnerStatus es el estado de un runner dentro del mercado.
type RunnerStatus string

const (
	RunnerActive  RunnerStatus = "ACTIVE"
	RunnerWinner  RunnerStatus = "WINNER"
	RunnerLoser   RunnerStatus = "LOSER"
	RunnerRemoved RunnerStatus = "REMOVED"
)

// StakingStrategy define cómo se eligen los precios a apostar.
type StakingStrategy string

const (
	// StakingOffer ofrece precios al stack contrario (entra a la cola).
	StakingOffer StakingStrategy = "offer"
	// StakingTake toma el mejor precio ofrecido.
	StakingTake StakingStrategy = "take"
	// StakingBSP apuesta al starting price con órdenes limit-on-close.
	StakingBSP StakingStrategy = "bsp"
)

// ParseStakingStrategy convierte el string de configuración en el enum cerrado.
func ParseStakingStrategy(s string) (StakingStrategy, error) {
	switch StakingStrategy(s) {
	case StakingOffer, StakingTake, StakingBSP:
		return StakingStrategy(s), nil
	}
	return "", fmt.Errorf("domain.ParseStakingStrategy: unknown strategy %q", s)
}

// Runner es una selección dentro de un mercado, con los mejores precios
// observados en el snapshot actual. Precio 0 significa "sin liquidez"
// (los precios del ladder siempre son >= 1.01).
type Runner struct {
	SelectionID int64
	Handicap    float64
	Status      RunnerStatus
	BestBack    float64
	BestLay     float64
}

// HasBack devuelve true si hay liquidez en el lado back.
func (r Runner) HasBack() bool { return r.BestBack > 0 }

// HasLay devuelve true si hay liquidez en el lado lay.
func (r Runner) HasLay() bool { return r.BestLay > 0 }

// MarketSnapshot es el estado de un mercado en un instante, tal como lo
// entrega el colaborador de market data. La identidad (MarketID) es
// inmutable; el resto muta snapshot a snapshot.
type MarketSnapshot struct {
	MarketID       string
	Status         MarketStatus
	InPlay         bool
	SecondsToStart float64
	// BaseRate es la comisión declarada por el mercado en %.
	// 0 significa "no declarada" y se usa DefaultBaseRate al liquidar.
	BaseRate float64
	Runners  []Runner
}

// ActiveRunners devuelve el número de runners con estado ACTIVE.
func (s MarketSnapshot) ActiveRunners() int {
	n := 0
	for _, r := range s.Runners {
		if r.Status == RunnerActive {
			n++
		}
	}
	return n
}
