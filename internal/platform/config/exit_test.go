package config_test

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/muslimbek77/tanlov-ai/internal/platform/config"
	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: config.ExitFailure},
		{name: "analysis failed", err: apperrors.New(apperrors.CodeAnalysisFailed, "failed"), want: config.ExitFailure},
		{name: "invalid argument", err: apperrors.New(apperrors.CodeInvalidArgument, "bad id"), want: config.ExitUsage},
		{name: "too few participants", err: apperrors.New(apperrors.CodeMinParticipants, "need two"), want: config.ExitUsage},
		{name: "wrapped settings error", err: fmt.Errorf("save: %w", apperrors.New(apperrors.CodeSettingsInvalid, "theme")), want: config.ExitUsage},
		{name: "signed out", err: apperrors.New(apperrors.CodeUnauthenticated, "401"), want: config.ExitAuth},
		{name: "no refresh token", err: apperrors.New(apperrors.CodeNoRefreshToken, "none"), want: config.ExitAuth},
		{name: "service down", err: apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "dial", errors.New("refused")), want: config.ExitUnavailable},
		{name: "database locked", err: apperrors.New(apperrors.CodeStorageUnavailable, "locked"), want: config.ExitUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := config.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// TestExitfUsesErrorStatus runs Exitf in a subprocess because os.Exit cannot
// be intercepted in-process.
func TestExitfUsesErrorStatus(t *testing.T) {
	if os.Getenv("TANLOV_EXITF_SUBPROCESS") == "1" {
		err := apperrors.New(apperrors.CodeUpstreamUnavailable, "service down")
		config.Exitf(err, "Error: %s", "xizmat ishlamayapti")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfUsesErrorStatus$")
	cmd.Env = append(os.Environ(), "TANLOV_EXITF_SUBPROCESS=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != config.ExitUnavailable {
		t.Fatalf("exit code = %d, want %d", exitErr.ExitCode(), config.ExitUnavailable)
	}
	if !strings.Contains(string(out), "Error: xizmat ishlamayapti") {
		t.Fatalf("stderr = %q", out)
	}
}
