package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// headerLine es la primera línea de un archivo de mercado: trae el
// marketDefinition completo.
type headerLine struct {
	MC []struct {
		MarketDefinition map[string]any `json:"marketDefinition"`
	} `json:"mc"`
}

// maxHeaderLine acota la primera línea; los marketDefinition reales rondan
// los pocos KB.
const maxHeaderLine = 1 << 20

// excluded decide si el archivo se filtra según su marketDefinition.
// Sin filtros configurados no se abre el archivo y nada se excluye.
// Con filtros, los mercados de harness ("Trot"/"Pace" en el nombre) se
// excluyen siempre, sean cuales sean las keys filtradas.
func excluded(path string, filters map[string]string) (bool, error) {
	if len(filters) == 0 {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxHeaderLine)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("read header of %q: %w", path, err)
		}
		return false, fmt.Errorf("read header of %q: empty file", path)
	}

	var header headerLine
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return false, fmt.Errorf("parse header of %q: %w", path, err)
	}
	if len(header.MC) == 0 || header.MC[0].MarketDefinition == nil {
		return false, fmt.Errorf("parse header of %q: no market definition", path)
	}
	def := header.MC[0].MarketDefinition

	if name, ok := def["name"].(string); ok {
		if strings.Contains(name, "Trot") || strings.Contains(name, "Pace") {
			return true, nil
		}
	}

	for key, want := range filters {
		if stringify(def[key]) != want {
			return true, nil
		}
	}
	return false, nil
}

// stringify normaliza el valor JSON del marketDefinition para compararlo
// con el filtro (que siempre llega como string desde la configuración).
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
