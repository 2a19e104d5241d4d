package domain

// ladder.go — el price ladder discreto del exchange.
//
// Los precios válidos no son uniformes: el incremento crece con el precio.
// La tabla es una constante del venue (Betfair), no lógica calculada.

import "math"

const (
	// MinTick y MaxTick son los extremos del ladder.
	MinTick = 1.01
	MaxTick = 1000.0
)

// ladderRange es un tramo [lo, hi) con incremento fijo.
type ladderRange struct {
	lo, hi, step float64
}

var ladder = []ladderRange{
	{1.01, 2, 0.01},
	{2, 3, 0.02},
	{3, 4, 0.05},
	{4, 6, 0.1},
	{6, 10, 0.2},
	{10, 20, 0.5},
	{20, 30, 1},
	{30, 50, 2},
	{50, 100, 5},
	{100, 1000, 10},
}

// NearestTick devuelve el precio válido del ladder más cercano a price.
// Valores fuera de rango se recortan a MinTick/MaxTick.
func NearestTick(price float64) float64 {
	if price <= MinTick {
		return MinTick
	}
	if price >= MaxTick {
		return MaxTick
	}
	for _, r := range ladder {
		if price < r.hi {
			n := math.Round((price - r.lo) / r.step)
			// Todos los ticks son múltiplos de 0.01: limpiar el ruido de float.
			return math.Round((r.lo+n*r.step)*100) / 100
		}
	}
	return MaxTick
}

// ValidTick devuelve true si price es exactamente un precio del ladder.
func ValidTick(price float64) bool {
	return price >= MinTick && price <= MaxTick && NearestTick(price) == price
}
