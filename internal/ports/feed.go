package ports

import (
	"context"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// SnapshotSource entrega los snapshots de un mercado en orden estricto.
// Los snapshots de un mismo mercado nunca se procesan en paralelo;
// mercados distintos pueden avanzar concurrentemente.
type SnapshotSource interface {
	// Next devuelve el siguiente snapshot. ok=false cuando la fuente se agota.
	Next(ctx context.Context) (snap domain.MarketSnapshot, ok bool, err error)
}
