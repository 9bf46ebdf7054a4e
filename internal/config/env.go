package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/folkbase/folkbase/pkg/utils/logging"
)

// Env holds the secrets and process settings that never live in the yaml file
type Env struct {
	DatabaseURL       string        `env:"FOLKBASE_DATABASE_URL"`
	SessionSecret     string        `env:"FOLKBASE_SESSION_SECRET"`
	CustomTokenSecret string        `env:"FOLKBASE_CUSTOM_TOKEN_SECRET"`
	SessionTTL        time.Duration `env:"FOLKBASE_SESSION_TTL" envDefault:"24h"`
	LogLevel          string        `env:"FOLKBASE_LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"FOLKBASE_LOG_FORMAT" envDefault:"json"`
	LogOutput         string        `env:"FOLKBASE_LOG_OUTPUT" envDefault:"stdout"`
}

// LoadEnv reads the given dotenv files (".env" when none are named) into the
// process environment and parses Env from it. Missing dotenv files are ignored;
// variables already set in the environment win.
func LoadEnv(files ...string) (*Env, error) {
	_ = godotenv.Load(files...)

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &e, nil
}

// RequireDatabase reports a missing connection string
func (e *Env) RequireDatabase() error {
	if e.DatabaseURL == "" {
		return fmt.Errorf("FOLKBASE_DATABASE_URL is not set")
	}
	return nil
}

// RequireSessionSecret reports a missing or weak session signing secret
func (e *Env) RequireSessionSecret() error {
	if len(e.SessionSecret) < 32 {
		return fmt.Errorf("FOLKBASE_SESSION_SECRET must be at least 32 characters")
	}
	return nil
}

func (e *Env) LoggerConfig() *logging.Config {
	return &logging.Config{Level: e.LogLevel, Format: e.LogFormat, Output: e.LogOutput}
}
