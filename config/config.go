package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tidehollow/loremaster/armory"
	"github.com/tidehollow/loremaster/cache"
	"github.com/tidehollow/loremaster/observe"
	"github.com/tidehollow/loremaster/resilience"
)

// ServiceName identifies this service in telemetry.
const ServiceName = "loremaster"

// Config is the environment-driven configuration of the game-data client.
type Config struct {
	// CacheDir may reference environment variables as ${VAR}
	// (e.g. "${HOME}/.cache/loremaster"); references are expanded strictly.
	CacheDir   string        `env:"LOREMASTER_CACHE_DIR"`
	MemorySize int           `env:"LOREMASTER_CACHE_MEMORY_SIZE" envDefault:"512"`
	DefaultTTL time.Duration `env:"LOREMASTER_CACHE_TTL" envDefault:"1h"`
	MaxTTL     time.Duration `env:"LOREMASTER_CACHE_MAX_TTL" envDefault:"24h"`

	GlobalRate  float64 `env:"LOREMASTER_GLOBAL_RATE" envDefault:"10"`
	GlobalBurst float64 `env:"LOREMASTER_GLOBAL_BURST" envDefault:"50"`
	CallerRate  float64 `env:"LOREMASTER_CALLER_RATE" envDefault:"2"`
	CallerBurst float64 `env:"LOREMASTER_CALLER_BURST" envDefault:"10"`

	DefaultNamespace string `env:"LOREMASTER_NAMESPACE"`
	DefaultLocale    string `env:"LOREMASTER_LOCALE"`
	Coalesce         bool   `env:"LOREMASTER_COALESCE" envDefault:"false"`

	LogLevel        string  `env:"LOREMASTER_LOG_LEVEL" envDefault:"info"`
	TraceExporter   string  `env:"LOREMASTER_TRACE_EXPORTER" envDefault:"none"`
	TraceSamplePct  float64 `env:"LOREMASTER_TRACE_SAMPLE_PCT" envDefault:"1.0"`
	MetricsExporter string  `env:"LOREMASTER_METRICS_EXPORTER" envDefault:"none"`
	Version         string  `env:"LOREMASTER_VERSION"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.CacheDir != "" {
		expanded, err := ExpandEnvStrict(cfg.CacheDir)
		if err != nil {
			return Config{}, fmt.Errorf("config: cache dir: %w", err)
		}
		cfg.CacheDir = expanded
	}
	return cfg, nil
}

// ClientConfig translates the loaded values into an armory.Config.
// The Observer is left nil; attach one built from ObserverConfig.
func (c Config) ClientConfig() armory.Config {
	return armory.Config{
		CacheDir:   c.CacheDir,
		MemorySize: c.MemorySize,
		Policy: cache.Policy{
			DefaultTTL: c.DefaultTTL,
			MaxTTL:     c.MaxTTL,
		},
		GlobalBucket: resilience.BucketConfig{
			Capacity: c.GlobalBurst,
			Rate:     c.GlobalRate,
		},
		CallerBucket: resilience.BucketConfig{
			Capacity: c.CallerBurst,
			Rate:     c.CallerRate,
		},
		DefaultNamespace: c.DefaultNamespace,
		DefaultLocale:    c.DefaultLocale,
		CoalesceRequests: c.Coalesce,
	}
}

// ObserverConfig translates the loaded values into an observe.Config.
func (c Config) ObserverConfig() observe.Config {
	return observe.Config{
		ServiceName: ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TraceExporter != "" && c.TraceExporter != "none",
			Exporter:  c.TraceExporter,
			SamplePct: c.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LogLevel != "",
			Level:   c.LogLevel,
		},
	}
}
