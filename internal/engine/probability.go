package engine

import (
	"log/slog"
	"math/rand/v2"
	"sync"
)

// ProbabilityModel genera y cachea un vector de probabilidades sintéticas
// por mercado. El vector se genera una sola vez por market id y se devuelve
// idéntico durante toda la vida del proceso, aunque el número de runners
// activos cambie después (la validación de longitud es del caller).
type ProbabilityModel struct {
	mu      sync.Mutex
	vectors map[string][]float64
	randFn  func() float64
}

// NewProbabilityModel crea el modelo con el RNG por defecto.
func NewProbabilityModel() *ProbabilityModel {
	return &ProbabilityModel{
		vectors: make(map[string][]float64),
		randFn:  rand.Float64,
	}
}

// GetOrCreate devuelve el vector del mercado, generándolo si no existe:
// activeRunners valores uniformes normalizados para sumar 1. El camino de
// creación está serializado: dos llamadas concurrentes para el mismo market
// id nunca producen dos vectores distintos.
func (m *ProbabilityModel) GetOrCreate(marketID string, activeRunners int) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.vectors[marketID]; ok {
		return v
	}

	v := make([]float64, activeRunners)
	var sum float64
	for i := range v {
		v[i] = m.randFn()
		// uniform [0,1) puede dar 0 exacto; cada entrada debe quedar en (0,1]
		for v[i] == 0 {
			v[i] = m.randFn()
		}
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}

	m.vectors[marketID] = v
	slog.Info("generated probabilities",
		"market_id", marketID,
		"runners", activeRunners,
		"probabilities", v,
	)
	return v
}
