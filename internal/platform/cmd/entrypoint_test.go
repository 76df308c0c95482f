package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/muslimbek77/tanlov-ai/internal/platform/otel"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8090"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"serve"`
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("CMD_TEST_ADDRESS", "env:9000")

	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Address != "env:9000" {
		t.Fatalf("expected env address, got %q", cfg.Address)
	}
	if cfg.Mode != "serve" {
		t.Fatalf("expected default mode, got %q", cfg.Mode)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceCLI, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv(otel.EnvEndpoint, "")
	want := errors.New("boom")

	called := false
	err := RunWithTelemetry(context.Background(), ServiceDashboard, func(context.Context) error {
		called = true
		return want
	})
	if !called {
		t.Fatal("expected run to be called")
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected run error, got %v", err)
	}
}
