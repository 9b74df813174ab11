package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// The three startup data sources. All are required; the service is
	// useless without any one of them and fails fast instead of serving
	// partial data.
	GeometryURL   string `envconfig:"GEOMETRY_URL" required:"true"`
	LanguageURL   string `envconfig:"LANGUAGE_URL" required:"true"`
	PopulationURL string `envconfig:"POPULATION_URL" required:"true"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	QueryCacheSize  int           `envconfig:"QUERY_CACHE_SIZE" default:"256"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.QueryCacheSize <= 0 {
		return nil, errors.New("QUERY_CACHE_SIZE must be positive")
	}
	return &cfg, nil
}
