// Package analysis is the HTTP client of the remote tender analysis service.
//
// The service owns document understanding, scoring, ranking and fraud
// detection. This package only moves documents and JSON payloads to it and
// maps its envelope ({"success": bool, "error": string}) and HTTP statuses to
// coded errors from internal/platform/errors.
//
// Payload types keep fields they do not model in an Extra map so results can
// be passed back to the service (compare, save, export) without loss.
package analysis
