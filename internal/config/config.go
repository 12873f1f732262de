// Package config содержит логику чтения конфигурации сервиса трансферов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса трансферов.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseURI   string `env:"DATABASE_URI"`
	AuthSecret    string `env:"AUTH_SECRET"`
	NotifyAddress string `env:"NOTIFY_ADDRESS"`
	Currency      string `env:"CURRENCY"`
	DateLayout    string `env:"DATE_LAYOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret
	envNotifyAddress := cfg.NotifyAddress
	envCurrency := cfg.Currency
	envDateLayout := cfg.DateLayout

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for auth cookies")
	flag.StringVar(&cfg.NotifyAddress, "n", "", "driver notification webhook address")
	flag.StringVar(&cfg.Currency, "c", "$", "currency symbol for statements")
	flag.StringVar(&cfg.DateLayout, "f", "02.01.2006", "date layout for statements")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envNotifyAddress != "" {
		cfg.NotifyAddress = envNotifyAddress
	}
	if envCurrency != "" {
		cfg.Currency = envCurrency
	}
	if envDateLayout != "" {
		cfg.DateLayout = envDateLayout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
