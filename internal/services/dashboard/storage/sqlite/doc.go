// Package sqlite provides the SQLite-backed dashboard store.
//
// Every table holds a single row keyed by id 1: the dashboard serves one
// operator per database file.
package sqlite
