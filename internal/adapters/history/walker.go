package history

// walker.go — ingesta de archivos históricos de mercado.
//
// El histórico se organiza como year/month/day/event/market.bz2
// (eg: PRO/2020/Aug/2/29936590/1.171755571.bz2). Los archivos se
// descomprimen junto a la fuente la primera vez que se tocan; los
// recorridos posteriores reutilizan el archivo plano.

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFiles se devuelve cuando ningún archivo pasa los filtros.
// Es fatal para el caller: no hay nada que reproducir.
var ErrNoFiles = errors.New("history: no market files matched the filters")

// Options controla el recorrido y el filtrado.
type Options struct {
	// Years, Months y Days restringen los subdirectorios visitados.
	// Vacío = todos.
	Years  []string
	Months []string
	Days   []string
	// Filters filtra por igualdad sobre el marketDefinition de la primera
	// línea del archivo, eg: {"bettingType": "ODDS", "marketType": "WIN"}.
	Filters map[string]string
	// DeleteFiltered borra fuente y descomprimido de los archivos filtrados.
	DeleteFiltered bool
}

// Walk recorre root y devuelve las rutas de los archivos de mercado
// descomprimidos que pasan los filtros, en orden determinista.
func Walk(root string, opts Options) ([]string, error) {
	var files []string

	years, err := subdirs(root, opts.Years)
	if err != nil {
		return nil, fmt.Errorf("history.Walk: %w", err)
	}
	for _, year := range years {
		yearPath := filepath.Join(root, year)
		months, err := subdirs(yearPath, opts.Months)
		if err != nil {
			return nil, fmt.Errorf("history.Walk: %w", err)
		}
		for _, month := range months {
			monthPath := filepath.Join(yearPath, month)
			days, err := subdirs(monthPath, opts.Days)
			if err != nil {
				return nil, fmt.Errorf("history.Walk: %w", err)
			}
			for _, day := range days {
				dayPath := filepath.Join(monthPath, day)
				events, err := subdirs(dayPath, nil)
				if err != nil {
					return nil, fmt.Errorf("history.Walk: %w", err)
				}
				for _, event := range events {
					eventPath := filepath.Join(dayPath, event)
					marketFiles, err := walkEvent(eventPath, opts)
					if err != nil {
						return nil, fmt.Errorf("history.Walk: event %s: %w", eventPath, err)
					}
					files = append(files, marketFiles...)
				}
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("history.Walk: filters %v: %w", opts.Filters, ErrNoFiles)
	}
	return files, nil
}

// walkEvent procesa los archivos .bz2 de un directorio de evento.
func walkEvent(eventPath string, opts Options) ([]string, error) {
	entries, err := os.ReadDir(eventPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bz2") {
			continue
		}
		compressed := filepath.Join(eventPath, entry.Name())
		plain := strings.TrimSuffix(compressed, ".bz2")

		if _, err := os.Stat(plain); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			slog.Info("decompressing market file", "path", compressed)
			if err := decompress(compressed, plain); err != nil {
				return nil, err
			}
		}

		drop, err := excluded(plain, opts.Filters)
		if err != nil {
			return nil, err
		}
		if drop {
			if opts.DeleteFiltered {
				slog.Info("deleting filtered market file", "path", compressed)
				if err := os.Remove(plain); err != nil && !os.IsNotExist(err) {
					return nil, err
				}
				if err := os.Remove(compressed); err != nil && !os.IsNotExist(err) {
					return nil, err
				}
			}
			continue
		}

		files = append(files, plain)
	}
	return files, nil
}

// decompress expande un .bz2 en la ruta destino.
func decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, bzip2.NewReader(in)); err != nil {
		return fmt.Errorf("decompress %q: %w", src, err)
	}
	return nil
}

// subdirs lista los subdirectorios de path ordenados, intersectados con
// include si no está vacío.
func subdirs(path string, include []string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", path, err)
	}

	allowed := make(map[string]bool, len(include))
	for _, name := range include {
		allowed[name] = true
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if len(include) > 0 && !allowed[entry.Name()] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
