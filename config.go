package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, read from the environment. A .env
// file in the working directory is honored when present.
type Config struct {
	APIKey            string        `envconfig:"OPENAI_API_KEY" required:"true"`
	Model             string        `envconfig:"ORAKLO_MODEL" default:"gpt-4.1"`
	BaseURL           string        `envconfig:"ORAKLO_BASE_URL"`
	OracleTimeout     time.Duration `envconfig:"ORAKLO_ORACLE_TIMEOUT" default:"30s"`
	OracleRetries     int           `envconfig:"ORAKLO_ORACLE_RETRIES" default:"3"`
	RequestsPerMinute int           `envconfig:"ORAKLO_ORACLE_RPM" default:"20"`
	SaveDir           string        `envconfig:"ORAKLO_SAVE_DIR" default:"saves"`
	Debug             bool          `envconfig:"ORAKLO_DEBUG"`
}

// loadConfig loads .env if present, then populates Config from the
// environment.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
