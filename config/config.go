package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del engine.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Data     DataConfig     `yaml:"data"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig contiene los parámetros de la estrategia de pricing.
type StrategyConfig struct {
	// StakingStrategy define cómo se eligen los precios: offer | take | bsp.
	StakingStrategy string `yaml:"staking_strategy"`
	// Stake es el tamaño de apuesta por orden. Obligatorio, sin default.
	Stake float64 `yaml:"stake"`
	// Margin es el Expected Value mínimo exigido antes de apostar (0.1 = 10%).
	Margin float64 `yaml:"margin"`
	// SecondsToStart es la ventana de trading: se ignoran mercados que
	// empiezan más tarde que este umbral. Puede ser negativo (post-salida).
	SecondsToStart int     `yaml:"seconds_to_start"`
	MinBackPrice   float64 `yaml:"min_back_price"`
	MaxBackPrice   float64 `yaml:"max_back_price"`
	MinLayPrice    float64 `yaml:"min_lay_price"`
	MaxLayPrice    float64 `yaml:"max_lay_price"`
}

// DataConfig controla de dónde se leen los archivos históricos de mercado.
type DataConfig struct {
	// Path es la raíz del histórico: year/month/day/event/market.bz2.
	Path string `yaml:"path"`
	// Years, Months y Days restringen el recorrido. Vacío = todos.
	Years  []string `yaml:"years"`
	Months []string `yaml:"months"`
	Days   []string `yaml:"days"`
	// Filters filtra por igualdad sobre el marketDefinition del archivo,
	// eg: {bettingType: ODDS, marketType: WIN}.
	Filters map[string]string `yaml:"market_definition_filters"`
	// DeleteFiltered borra los archivos (fuente y descomprimido) que no
	// pasan los filtros. Útil para podar históricos grandes.
	DeleteFiltered bool `yaml:"delete_filtered"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// stakingStrategies son los valores válidos de strategy.staking_strategy.
var stakingStrategies = map[string]bool{"offer": true, "take": true, "bsp": true}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los defaults se aplican solo a las keys ausentes; un 0 explícito se respeta.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// defaults devuelve una configuración con los valores por defecto de todas
// las keys opcionales. Stake y staking_strategy no tienen default.
func defaults() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Margin:         0.1,
			SecondsToStart: 60,
			MinBackPrice:   1,
			MaxBackPrice:   150,
			MinLayPrice:    1,
			MaxLayPrice:    150,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate comprueba los campos obligatorios y los rangos.
// Se ejecuta en la construcción: el resto del código asume un Config válido.
func (c *Config) Validate() error {
	s := c.Strategy
	if s.Stake <= 0 {
		return fmt.Errorf("strategy.stake is required and must be > 0 (got %v)", s.Stake)
	}
	if !stakingStrategies[s.StakingStrategy] {
		return fmt.Errorf("strategy.staking_strategy must be one of offer|take|bsp (got %q)", s.StakingStrategy)
	}
	if s.Margin < 0 {
		return fmt.Errorf("strategy.margin must be >= 0 (got %v)", s.Margin)
	}
	if s.MinBackPrice > s.MaxBackPrice {
		return fmt.Errorf("strategy.min_back_price %v > max_back_price %v", s.MinBackPrice, s.MaxBackPrice)
	}
	if s.MinLayPrice > s.MaxLayPrice {
		return fmt.Errorf("strategy.min_lay_price %v > max_lay_price %v", s.MinLayPrice, s.MaxLayPrice)
	}
	return nil
}

// TradingWindow devuelve el umbral seconds_to_start como time.Duration.
func (c *Config) TradingWindow() time.Duration {
	return time.Duration(c.Strategy.SecondsToStart) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
}
