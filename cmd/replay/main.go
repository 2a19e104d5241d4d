package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/betengine/config"
	"github.com/alejandrodnm/betengine/internal/adapters/exchange"
	"github.com/alejandrodnm/betengine/internal/adapters/feed"
	"github.com/alejandrodnm/betengine/internal/adapters/history"
	"github.com/alejandrodnm/betengine/internal/adapters/notify"
	"github.com/alejandrodnm/betengine/internal/domain"
	"github.com/alejandrodnm/betengine/internal/engine"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dataPath := flag.String("data", "", "historical data root (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	setupLogger(cfg.Log)

	staking, err := domain.ParseStakingStrategy(cfg.Strategy.StakingStrategy)
	if err != nil {
		slog.Error("invalid staking strategy", "err", err)
		os.Exit(1)
	}

	slog.Info("betengine starting",
		"config", *configPath,
		"data", cfg.Data.Path,
		"staking", staking,
		"stake", cfg.Strategy.Stake,
		"margin", cfg.Strategy.Margin,
	)

	files, err := history.Walk(cfg.Data.Path, history.Options{
		Years:          cfg.Data.Years,
		Months:         cfg.Data.Months,
		Days:           cfg.Data.Days,
		Filters:        cfg.Data.Filters,
		DeleteFiltered: cfg.Data.DeleteFiltered,
	})
	if err != nil {
		if errors.Is(err, history.ErrNoFiles) {
			slog.Error("no market files matched the configured filters", "err", err)
		} else {
			slog.Error("failed to walk historical data", "err", err, "path", cfg.Data.Path)
		}
		os.Exit(1)
	}
	slog.Info("market files found", "count", len(files))

	executor := exchange.NewPaper()
	notifier := notify.NewConsole()
	eng := engine.New(engine.Config{
		Staking:        staking,
		Stake:          cfg.Strategy.Stake,
		Margin:         cfg.Strategy.Margin,
		SecondsToStart: float64(cfg.Strategy.SecondsToStart),
		MinBackPrice:   cfg.Strategy.MinBackPrice,
		MaxBackPrice:   cfg.Strategy.MaxBackPrice,
		MinLayPrice:    cfg.Strategy.MinLayPrice,
		MaxLayPrice:    cfg.Strategy.MaxLayPrice,
	}, executor, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := replayAll(ctx, eng, files); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("replay interrupted")
		} else {
			slog.Error("replay exited with error", "err", err)
			os.Exit(1)
		}
	}

	notifier.PrintSummary()
	slog.Info("betengine stopped cleanly")
}

// replayAll recorre los archivos en orden alimentando el mismo engine, de
// forma que el resumen final agrega todos los mercados de la sesión.
func replayAll(ctx context.Context, eng *engine.Engine, files []string) error {
	for _, path := range files {
		src, err := feed.Open(path)
		if err != nil {
			slog.Warn("skipping unreadable market file", "err", err, "path", path)
			continue
		}

		slog.Debug("replaying market file", "path", path)
		err = eng.Run(ctx, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
