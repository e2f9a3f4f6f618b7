package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/radar.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// Master data documents. Load failures fall back to built-in defaults.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"shared/questionnaire.json"`
	RulesPath   string `env:"RULES_PATH" envDefault:"shared/scoring_rules.json"`

	PriceCents int64  `env:"PRICE_CENTS" envDefault:"990"`
	Currency   string `env:"CURRENCY" envDefault:"BRL"`

	// Mercado Pago. An empty access token selects the mock gateway.
	MPAccessToken   string `env:"MP_ACCESS_TOKEN"`
	MPWebhookSecret string `env:"MP_WEBHOOK_SECRET"`
	MPBaseURL       string `env:"MP_BASE_URL" envDefault:"https://api.mercadopago.com"`
	AppBaseURL      string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// Optional infrastructure. Empty disables the integration.
	RedisURL string `env:"REDIS_URL"`
	AMQPURL  string `env:"AMQP_URL"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.PriceCents <= 0 {
		return nil, fmt.Errorf("PRICE_CENTS must be positive, got %d", cfg.PriceCents)
	}
	return &cfg, nil
}

// MockPayments reports whether checkout should use the placeholder gateway.
func (c *Config) MockPayments() bool {
	return c.MPAccessToken == ""
}
