package config

import (
	"fmt"
	"os"

	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(apperrors.ExitFailure)
}

// ExitErr writes err to stderr and exits with the status mapped from its
// error code, so scripts can tell configuration mistakes from an exhausted
// catalog.
func ExitErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(apperrors.ExitCode(err))
}
