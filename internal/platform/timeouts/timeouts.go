// Package timeouts defines shared timeout constants used across the CLI and
// the dashboard server.
package timeouts

import "time"

// UpstreamRequest is the default cap for a single call to the analysis or
// auth service. Document analysis is slow, so it is generous.
const UpstreamRequest = 60 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Write limits how long the dashboard server spends writing a response.
const Write = 30 * time.Second

// Idle limits how long keep-alive connections stay open between requests.
const Idle = 2 * time.Minute

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
