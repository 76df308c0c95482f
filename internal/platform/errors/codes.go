// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeMinParticipants Code = "MIN_PARTICIPANTS"
	CodeSettingsInvalid Code = "SETTINGS_INVALID"
	CodeNotFound        Code = "NOT_FOUND"

	// Session errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNoRefreshToken  Code = "NO_REFRESH_TOKEN"
	CodeRefreshFailed   Code = "REFRESH_FAILED"
	CodeLoginFailed     Code = "LOGIN_FAILED"

	// Upstream errors
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamRejected    Code = "UPSTREAM_REJECTED"
	CodeAnalysisFailed      Code = "ANALYSIS_FAILED"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument,
		CodeMinParticipants,
		CodeSettingsInvalid:
		return http.StatusBadRequest

	case CodeNotFound:
		return http.StatusNotFound

	case CodeUnauthenticated,
		CodeNoRefreshToken,
		CodeRefreshFailed,
		CodeLoginFailed:
		return http.StatusUnauthorized

	case CodeUpstreamUnavailable,
		CodeUpstreamRejected,
		CodeAnalysisFailed:
		return http.StatusBadGateway

	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// FromStatus maps an upstream HTTP status to the code the client reports.
// Successful statuses map to CodeUnknown.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthenticated
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return CodeInvalidArgument
	case status >= 400:
		return CodeUpstreamRejected
	default:
		return CodeUnknown
	}
}
