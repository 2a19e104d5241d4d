package engine

// pricing.go — selección de precio con gate de Expected Value.
//
// Una apuesta back solo es +EV si la probabilidad implícita del mercado
// (inversa del precio) es peor para nosotros que nuestra probabilidad
// modelada, al menos por el margin. El lado lay es la condición espejo.
// Los bounds min/max son un tope de riesgo duro independiente del EV.

import "github.com/alejandrodnm/betengine/internal/domain"

// Candidate es una propuesta de precio para un (runner, lado).
// OK=false significa "no hay apuesta" para ese lado en este update.
type Candidate struct {
	Price float64
	OK    bool
}

// noBet es el candidato vacío.
var noBet = Candidate{}

// Pricer calcula precios candidato según la estrategia de staking.
type Pricer struct {
	Staking domain.StakingStrategy
	Margin  float64
	MinBack float64
	MaxBack float64
	MinLay  float64
	MaxLay  float64
}

// BackCandidate calcula el precio back según la estrategia:
//   - take: tomar el mejor back ofrecido
//   - offer: ofrecer al mejor lay (entrar a la cola del stack lay)
func (p Pricer) BackCandidate(probability, bestBack, bestLay float64) Candidate {
	if bestBack <= 0 || bestLay <= 0 {
		return noBet
	}

	var price float64
	switch p.Staking {
	case domain.StakingTake:
		price = bestBack
	case domain.StakingOffer:
		price = bestLay
	default:
		return noBet
	}

	// Nuestro precio justo inflado por el margin debe cubrir el precio pedido.
	evPrice := (1 / probability) * (1 + p.Margin)
	if evPrice < price {
		return noBet
	}

	if price < p.MinBack || price > p.MaxBack {
		return noBet
	}
	return Candidate{Price: price, OK: true}
}

// LayCandidate es el espejo de BackCandidate:
//   - take: tomar el mejor lay ofrecido
//   - offer: ofrecer al mejor back (entrar a la cola del stack back)
func (p Pricer) LayCandidate(probability, bestBack, bestLay float64) Candidate {
	if bestBack <= 0 || bestLay <= 0 {
		return noBet
	}

	var price float64
	switch p.Staking {
	case domain.StakingTake:
		price = bestLay
	case domain.StakingOffer:
		price = bestBack
	default:
		return noBet
	}

	evPrice := (1 / probability) / (1 + p.Margin)
	if evPrice > price {
		return noBet
	}

	if price < p.MinLay || price > p.MaxLay {
		return noBet
	}
	return Candidate{Price: price, OK: true}
}
