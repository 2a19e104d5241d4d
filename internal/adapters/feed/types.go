package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// DTOs del stream histórico del exchange. Solo se mapean los campos que el
// engine consume; el resto de la línea se ignora.

type mcmMessage struct {
	Op string         `json:"op"`
	PT int64          `json:"pt"`
	MC []marketChange `json:"mc"`
}

type marketChange struct {
	ID               string            `json:"id"`
	MarketDefinition *marketDefinition `json:"marketDefinition"`
	RC               []runnerChange    `json:"rc"`
}

type marketDefinition struct {
	Status         string             `json:"status"`
	InPlay         bool               `json:"inPlay"`
	MarketTime     time.Time          `json:"marketTime"`
	MarketBaseRate float64            `json:"marketBaseRate"`
	Runners        []runnerDefinition `json:"runners"`
}

type runnerDefinition struct {
	ID     int64   `json:"id"`
	HC     float64 `json:"hc"`
	Status string  `json:"status"`
}

// runnerChange trae los mejores precios disponibles por nivel:
// [nivel, precio, tamaño].
type runnerChange struct {
	ID   int64        `json:"id"`
	HC   float64      `json:"hc"`
	BATB [][3]float64 `json:"batb"`
	BATL [][3]float64 `json:"batl"`
}

// parseLine decodifica una línea mcm. Cualquier otro op se rechaza.
func parseLine(line []byte) (mcmMessage, error) {
	var msg mcmMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return mcmMessage{}, fmt.Errorf("parse stream line: %w", err)
	}
	if msg.Op != "mcm" {
		return mcmMessage{}, fmt.Errorf("unexpected stream op %q", msg.Op)
	}
	return msg, nil
}
