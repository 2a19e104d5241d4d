package domain

// DefaultBaseRate es la comisión en % usada cuando el mercado no declara
// la suya.
const DefaultBaseRate = 5.0

// SettlementLedger resume el PnL realizado de un mercado cerrado.
// Es transitorio: se calcula una vez al cierre y solo se reporta.
type SettlementLedger struct {
	MarketID   string
	BackPnL    float64
	LayPnL     float64
	GrossPnL   float64
	Commission float64
	NetPnL     float64
}

// Settle calcula el PnL realizado del mercado a partir del snapshot final
// y de las órdenes colocadas por esta estrategia.
//
// Por cada orden sobre un runner WINNER: back suma matched*(price-1),
// lay resta matched*(price-1). Sobre un LOSER: back resta matched,
// lay suma matched. Runners en cualquier otro estado (eg. REMOVED) no
// aportan nada. La comisión solo aplica a mercados con PnL positivo.
func Settle(snap MarketSnapshot, orders []Order) SettlementLedger {
	type key struct {
		selectionID int64
		handicap    float64
	}
	status := make(map[key]RunnerStatus, len(snap.Runners))
	for _, r := range snap.Runners {
		status[key{r.SelectionID, r.Handicap}] = r.Status
	}

	ledger := SettlementLedger{MarketID: snap.MarketID}
	for _, o := range orders {
		switch status[key{o.SelectionID, o.Handicap}] {
		case RunnerWinner:
			if o.Side == SideBack {
				ledger.BackPnL += o.SizeMatched * (o.Price - 1)
			}
			if o.Side == SideLay {
				ledger.LayPnL -= o.SizeMatched * (o.Price - 1)
			}
		case RunnerLoser:
			if o.Side == SideBack {
				ledger.BackPnL -= o.SizeMatched
			}
			if o.Side == SideLay {
				ledger.LayPnL += o.SizeMatched
			}
		}
	}

	ledger.GrossPnL = ledger.BackPnL + ledger.LayPnL
	ledger.NetPnL = ledger.GrossPnL

	if ledger.GrossPnL > 0 {
		rate := snap.BaseRate
		if rate == 0 {
			rate = DefaultBaseRate
		}
		ledger.Commission = ledger.GrossPnL * rate / 100
		ledger.NetPnL = ledger.GrossPnL - ledger.Commission
	}

	return ledger
}
