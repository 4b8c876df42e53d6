package catalogstub

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/validator"
)

// Config holds the stub binary's settings.
type Config struct {
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Port        int           `env:"CATALOG_STUB_PORT" envDefault:"8001" validate:"min=1,max=65535"`
	Products    int           `env:"CATALOG_STUB_PRODUCTS" envDefault:"100" validate:"gte=0"`
	Seed        uint64        `env:"CATALOG_STUB_SEED" envDefault:"1"`
	FailureRate float64       `env:"CATALOG_STUB_FAILURE_RATE" envDefault:"0" validate:"gte=0,lte=1"`
	Latency     time.Duration `env:"CATALOG_STUB_LATENCY" envDefault:"0s" validate:"gte=0"`
}

// LoadConfig reads Config from the environment and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return nil, err
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid catalog stub config: %w", err)
	}
	return &cfg, nil
}

// Options returns the chaos settings for NewServer.
func (c *Config) Options() Options {
	return Options{FailureRate: c.FailureRate, Latency: c.Latency}
}
