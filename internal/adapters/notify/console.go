package notify

// console.go — notificador de liquidaciones por consola.
//
// Loguea cada liquidación al cerrar el mercado y acumula los ledgers para
// imprimir un resumen tabular al final de la sesión de replay.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	ledgers []domain.SettlementLedger
}

// NewConsole crea un notificador que escribe el resumen a stdout.
func NewConsole() *Console {
	return NewConsoleWriter(os.Stdout)
}

// NewConsoleWriter crea un notificador con salida propia (tests).
func NewConsoleWriter(out io.Writer) *Console {
	return &Console{out: out}
}

// NotifySettlement registra y loguea la liquidación de un mercado.
func (c *Console) NotifySettlement(_ context.Context, ledger domain.SettlementLedger) error {
	c.mu.Lock()
	c.ledgers = append(c.ledgers, ledger)
	c.mu.Unlock()

	slog.Info("mercado liquidado",
		"market_id", ledger.MarketID,
		"back_pnl", ledger.BackPnL,
		"lay_pnl", ledger.LayPnL,
		"gross_pnl", ledger.GrossPnL,
		"commission", ledger.Commission,
		"net_pnl", ledger.NetPnL,
	)
	return nil
}

// Ledgers devuelve las liquidaciones acumuladas en orden de llegada.
func (c *Console) Ledgers() []domain.SettlementLedger {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.SettlementLedger, len(c.ledgers))
	copy(out, c.ledgers)
	return out
}

// PrintSummary imprime la tabla de liquidaciones con una fila TOTAL.
func (c *Console) PrintSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.ledgers) == 0 {
		fmt.Fprintln(c.out, "Sin mercados liquidados.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Back", "Lay", "Gross", "Comm", "Net")

	var total domain.SettlementLedger
	for _, l := range c.ledgers {
		table.Append(
			l.MarketID,
			fmt.Sprintf("%.2f", l.BackPnL),
			fmt.Sprintf("%.2f", l.LayPnL),
			fmt.Sprintf("%.2f", l.GrossPnL),
			fmt.Sprintf("%.2f", l.Commission),
			fmt.Sprintf("%.2f", l.NetPnL),
		)
		total.BackPnL += l.BackPnL
		total.LayPnL += l.LayPnL
		total.GrossPnL += l.GrossPnL
		total.Commission += l.Commission
		total.NetPnL += l.NetPnL
	}
	table.Append(
		"TOTAL",
		fmt.Sprintf("%.2f", total.BackPnL),
		fmt.Sprintf("%.2f", total.LayPnL),
		fmt.Sprintf("%.2f", total.GrossPnL),
		fmt.Sprintf("%.2f", total.Commission),
		fmt.Sprintf("%.2f", total.NetPnL),
	)
	table.Render()
}
