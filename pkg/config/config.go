package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, populated from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort    int `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9090"`

	// DatabaseURL is optional; when empty the server runs on in-memory
	// stores, which is what the CLI and the test suite use.
	DatabaseURL string `env:"DATABASE_URL"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// SubscriberBuffer caps how many realtime events a slow subscriber
	// may lag behind before the hub starts dropping for it.
	SubscriberBuffer int `env:"WS_SUBSCRIBER_BUFFER" envDefault:"64"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
