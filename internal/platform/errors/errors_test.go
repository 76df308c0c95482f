package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("refresh session: %w", New(CodeNoRefreshToken, "no refresh token"))

	if !stderrors.Is(err, &Error{Code: CodeNoRefreshToken}) {
		t.Fatal("expected code match through wrapping")
	}
	if stderrors.Is(err, &Error{Code: CodeRefreshFailed}) {
		t.Fatal("unexpected match on different code")
	}
	if !HasCode(err, CodeNoRefreshToken) {
		t.Fatal("HasCode should report wrapped code")
	}
	if got := CodeOf(err); got != CodeNoRefreshToken {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q", got)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := Wrap(CodeUpstreamUnavailable, "analyze tender", cause)

	if got := err.Error(); got != "analyze tender: dial tcp: refused" {
		t.Fatalf("Error() = %q", got)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose cause")
	}
	if got := Wrap(CodeUnknown, "", cause).Error(); got != cause.Error() {
		t.Fatalf("Error() without message = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeInvalidArgument:     http.StatusBadRequest,
		CodeMinParticipants:     http.StatusBadRequest,
		CodeSettingsInvalid:     http.StatusBadRequest,
		CodeNotFound:            http.StatusNotFound,
		CodeUnauthenticated:     http.StatusUnauthorized,
		CodeNoRefreshToken:      http.StatusUnauthorized,
		CodeUpstreamUnavailable: http.StatusBadGateway,
		CodeAnalysisFailed:      http.StatusBadGateway,
		CodeStorageUnavailable:  http.StatusServiceUnavailable,
		CodeUnknown:             http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := code.HTTPStatus(); got != want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", code, got, want)
		}
	}
}

func TestFromStatus(t *testing.T) {
	tests := map[int]Code{
		http.StatusUnauthorized:        CodeUnauthenticated,
		http.StatusNotFound:            CodeNotFound,
		http.StatusBadRequest:          CodeInvalidArgument,
		http.StatusInternalServerError: CodeUpstreamRejected,
		http.StatusForbidden:           CodeUpstreamRejected,
		http.StatusOK:                  CodeUnknown,
	}
	for status, want := range tests {
		if got := FromStatus(status); got != want {
			t.Fatalf("FromStatus(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestLocalizedMessage(t *testing.T) {
	err := fmt.Errorf("analyze: %w", WithMetadata(CodeMinParticipants, "too few participants", map[string]string{"Min": "2"}))

	if got := LocalizedMessage(err, "uz-Latn"); got != "Kamida 2 ta ishtirokchi kerak" {
		t.Fatalf("uz-Latn message = %q", got)
	}
	if got := LocalizedMessage(err, "uz-Cyrl"); got != "Камида 2 та иштирокчи кэрак" {
		t.Fatalf("uz-Cyrl message = %q", got)
	}
	if got := LocalizedMessage(stderrors.New("boom"), "ru"); got == "" || got == "boom" {
		t.Fatalf("plain error message = %q", got)
	}
	if got := LocalizedMessage(nil, "ru"); got != "" {
		t.Fatalf("nil error message = %q", got)
	}
}
