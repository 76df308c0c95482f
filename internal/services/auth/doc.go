// Package auth talks to the token authentication service.
//
// The service issues an access/refresh token pair on login. Callers attach
// the access token to analysis requests with Bearer and exchange the refresh
// token explicitly through Refresh; this package never retries a request on
// its own.
package auth
