package feed

// replay.go — fuente de snapshots desde un archivo histórico de mercado.
//
// Cada línea del archivo es un mensaje mcm del stream del exchange:
// cambios de marketDefinition (estado, in-play, runners) y/o cambios de
// mejores precios por runner (batb/batl nivel 0). El replay acumula el
// estado y emite un snapshot completo por línea, en el mismo orden
// estricto en que el mercado lo publicó.

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/betengine/internal/domain"
)

// Replay implementa ports.SnapshotSource sobre un archivo de mercado.
type Replay struct {
	path   string
	file   io.ReadCloser
	reader *bufio.Reader

	marketID   string
	marketTime time.Time
	current    domain.MarketSnapshot
}

// Open abre un archivo de mercado descomprimido para replay.
func Open(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed.Open: %w", err)
	}
	return &Replay{
		path:   path,
		file:   f,
		reader: bufio.NewReaderSize(f, 256*1024),
	}, nil
}

// Close libera el archivo subyacente.
func (r *Replay) Close() error {
	return r.file.Close()
}

// Next devuelve el siguiente snapshot del mercado. Las líneas malformadas
// se loguean y se saltan; ok=false al agotar el archivo.
func (r *Replay) Next(ctx context.Context) (domain.MarketSnapshot, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.MarketSnapshot{}, false, ctx.Err()
		default:
		}

		line, err := r.reader.ReadBytes('\n')
		if len(line) == 0 && err == io.EOF {
			return domain.MarketSnapshot{}, false, nil
		}
		if err != nil && err != io.EOF {
			return domain.MarketSnapshot{}, false, fmt.Errorf("feed.Next: read %q: %w", r.path, err)
		}

		snap, ok := r.apply(line)
		if ok {
			return snap, true, nil
		}
		if err == io.EOF {
			return domain.MarketSnapshot{}, false, nil
		}
	}
}

// apply integra una línea del stream en el estado acumulado y devuelve
// una copia del snapshot resultante.
func (r *Replay) apply(line []byte) (domain.MarketSnapshot, bool) {
	msg, err := parseLine(line)
	if err != nil {
		slog.Warn("skipping malformed stream line", "path", r.path, "err", err)
		return domain.MarketSnapshot{}, false
	}

	publishTime := time.UnixMilli(msg.PT).UTC()
	applied := false
	for _, mc := range msg.MC {
		// un archivo contiene un solo mercado; ignorar ids ajenos
		if r.marketID == "" {
			r.marketID = mc.ID
			r.current.MarketID = mc.ID
		}
		if mc.ID != r.marketID {
			continue
		}

		if mc.MarketDefinition != nil {
			r.applyDefinition(*mc.MarketDefinition)
		}
		for _, rc := range mc.RC {
			r.applyPrices(rc)
		}
		applied = true
	}
	if !applied {
		return domain.MarketSnapshot{}, false
	}

	if !r.marketTime.IsZero() {
		r.current.SecondsToStart = r.marketTime.Sub(publishTime).Seconds()
	}

	snap := r.current
	snap.Runners = make([]domain.Runner, len(r.current.Runners))
	copy(snap.Runners, r.current.Runners)
	return snap, true
}

// applyDefinition actualiza el estado del mercado y la lista de runners,
// preservando los mejores precios ya conocidos de cada runner.
func (r *Replay) applyDefinition(def marketDefinition) {
	if def.Status != "" {
		r.current.Status = domain.MarketStatus(def.Status)
	}
	r.current.InPlay = def.InPlay
	if def.MarketBaseRate > 0 {
		r.current.BaseRate = def.MarketBaseRate
	}
	if !def.MarketTime.IsZero() {
		r.marketTime = def.MarketTime
	}

	if len(def.Runners) == 0 {
		return
	}
	runners := make([]domain.Runner, 0, len(def.Runners))
	for _, rd := range def.Runners {
		runner := domain.Runner{
			SelectionID: rd.ID,
			Handicap:    rd.HC,
			Status:      domain.RunnerStatus(rd.Status),
		}
		if prev, ok := r.findRunner(rd.ID, rd.HC); ok {
			runner.BestBack = prev.BestBack
			runner.BestLay = prev.BestLay
		}
		runners = append(runners, runner)
	}
	r.current.Runners = runners
}

// applyPrices aplica un cambio de mejores precios. Un precio 0 en el
// nivel 0 significa que la liquidez de ese lado desapareció.
func (r *Replay) applyPrices(rc runnerChange) {
	for i := range r.current.Runners {
		runner := &r.current.Runners[i]
		if runner.SelectionID != rc.ID || runner.Handicap != rc.HC {
			continue
		}
		for _, level := range rc.BATB {
			if level[0] == 0 {
				runner.BestBack = level[1]
			}
		}
		for _, level := range rc.BATL {
			if level[0] == 0 {
				runner.BestLay = level[1]
			}
		}
		return
	}
}

func (r *Replay) findRunner(id int64, hc float64) (domain.Runner, bool) {
	for _, runner := range r.current.Runners {
		if runner.SelectionID == id && runner.Handicap == hc {
			return runner, true
		}
	}
	return domain.Runner{}, false
}
