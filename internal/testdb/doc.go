// Package testdb provides utilities for integration tests that need a real
// PostgreSQL database: connection discovery, schema migration and per-test
// transactions that are always rolled back.
package testdb
