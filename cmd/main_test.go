package main

import (
	"testing"
)

// TestMainPackage verifies the main package is properly documented.
func TestMainPackage(t *testing.T) {
	t.Parallel()
	// This test exists to ensure the package is loadable and properly structured.
	// The main() function is tested via integration tests.
}
