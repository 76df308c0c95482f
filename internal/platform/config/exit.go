package config

import (
	"fmt"
	"os"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
)

// Exit statuses of the tanlov command.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitAuth        = 3
	ExitUnavailable = 4
)

// ExitCode maps err to the process exit status. Scripts use it to tell bad
// input, missing credentials and an unreachable service apart.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case apperrors.HasCode(err, apperrors.CodeInvalidArgument),
		apperrors.HasCode(err, apperrors.CodeMinParticipants),
		apperrors.HasCode(err, apperrors.CodeSettingsInvalid):
		return ExitUsage
	case apperrors.HasCode(err, apperrors.CodeUnauthenticated),
		apperrors.HasCode(err, apperrors.CodeNoRefreshToken),
		apperrors.HasCode(err, apperrors.CodeRefreshFailed),
		apperrors.HasCode(err, apperrors.CodeLoginFailed):
		return ExitAuth
	case apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable),
		apperrors.HasCode(err, apperrors.CodeStorageUnavailable):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}

// Exitf writes the formatted message to stderr and exits with ExitCode(err).
func Exitf(err error, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(ExitCode(err))
}
