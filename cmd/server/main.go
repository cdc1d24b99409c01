// Package main implements the entry point for the catalog API server, which
// serves stores, items and tags behind JWT authentication. The same binary
// runs database migrations and hashes passwords for seeding.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra prints the error.
		os.Exit(1)
	}
}
