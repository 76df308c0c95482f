package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"TANLOV_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TANLOV_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadAppDefaults(t *testing.T) {
	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("load app: %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("api base url = %q", cfg.APIBaseURL)
	}
	if cfg.DBPath != "data/tanlov.db" || cfg.HTTPAddr != ":8090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 60*time.Second || cfg.ParticipantConcurrency != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadAppReadsEnv(t *testing.T) {
	t.Setenv("TANLOV_API_BASE_URL", "http://localhost:8000/api")
	t.Setenv("TANLOV_LANGUAGE", "ru")
	t.Setenv("TANLOV_HTTP_TIMEOUT", "5s")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("load app: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api" || cfg.Language != "ru" || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadAppRejectsInvalidConcurrency(t *testing.T) {
	t.Setenv("TANLOV_PARTICIPANT_CONCURRENCY", "0")

	if _, err := LoadApp(); err == nil {
		t.Fatal("expected validation error")
	}
}
