package ports

import (
	"context"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// Notifier reporta las liquidaciones calculadas al cierre de cada mercado.
type Notifier interface {
	// NotifySettlement reporta el ledger de un mercado recién cerrado.
	NotifySettlement(ctx context.Context, ledger domain.SettlementLedger) error
}
