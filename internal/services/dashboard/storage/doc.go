// Package storage defines persistence contracts for dashboard state kept on
// the operator's machine: preferences, the signed-in session and an
// unfinished analysis that a later run can continue.
package storage
