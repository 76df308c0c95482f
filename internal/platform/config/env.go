package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIBaseURL is the production analysis service root.
const DefaultAPIBaseURL = "https://tanlov.kuprikqurilish.uz/api"

// App holds the settings shared by every tanlov command. Command-line flags
// override these values.
type App struct {
	APIBaseURL             string        `env:"TANLOV_API_BASE_URL" envDefault:"https://tanlov.kuprikqurilish.uz/api"`
	DBPath                 string        `env:"TANLOV_DB_PATH" envDefault:"data/tanlov.db"`
	Language               string        `env:"TANLOV_LANGUAGE"`
	HTTPAddr               string        `env:"TANLOV_HTTP_ADDR" envDefault:":8090"`
	HTTPTimeout            time.Duration `env:"TANLOV_HTTP_TIMEOUT" envDefault:"60s"`
	ParticipantConcurrency int           `env:"TANLOV_PARTICIPANT_CONCURRENCY" envDefault:"2"`
	AccessToken            string        `env:"TANLOV_ACCESS_TOKEN"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadApp parses App from the environment and validates it.
func LoadApp() (App, error) {
	var cfg App
	if err := ParseEnv(&cfg); err != nil {
		return App{}, err
	}
	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (a App) Validate() error {
	if a.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if a.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", a.HTTPTimeout)
	}
	if a.ParticipantConcurrency < 1 {
		return fmt.Errorf("participant concurrency must be at least 1, got %d", a.ParticipantConcurrency)
	}
	return nil
}
