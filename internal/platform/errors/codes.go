// Package errors provides structured error handling for configuration and
// run failures.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog errors
	CodeCatalogReservedDelimiter Code = "CATALOG_RESERVED_DELIMITER"
	CodeCatalogInvalidWeight     Code = "CATALOG_INVALID_WEIGHT"
	CodeCatalogLayerMissing      Code = "CATALOG_LAYER_MISSING"
	CodeCatalogInvalidBlend      Code = "CATALOG_INVALID_BLEND"
	CodeCatalogInvalidOpacity    Code = "CATALOG_INVALID_OPACITY"

	// Pairing errors
	CodePairingUnknownReference   Code = "PAIRING_UNKNOWN_REFERENCE"
	CodePairingUnreachableTrait   Code = "PAIRING_UNREACHABLE_TRAIT"
	CodePairingEmptyCandidatePool Code = "PAIRING_EMPTY_CANDIDATE_POOL"

	// DNA errors
	CodeDNAMalformed     Code = "DNA_MALFORMED"
	CodeDNALayerMismatch Code = "DNA_LAYER_MISMATCH"

	// Run errors
	CodeUniquenessExhausted Code = "UNIQUENESS_EXHAUSTED"
	CodeProjectInvalid      Code = "PROJECT_INVALID"
)

// Exit codes returned by ExitCode.
const (
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitExhausted     = 3
)

// ExitCode maps domain codes to process exit statuses.
func (c Code) ExitCode() int {
	switch c {
	// Configuration - the catalog, pairing table or project file is unusable
	case CodeCatalogReservedDelimiter,
		CodeCatalogInvalidWeight,
		CodeCatalogLayerMissing,
		CodeCatalogInvalidBlend,
		CodeCatalogInvalidOpacity,
		CodePairingUnknownReference,
		CodePairingUnreachableTrait,
		CodePairingEmptyCandidatePool,
		CodeDNAMalformed,
		CodeDNALayerMismatch,
		CodeProjectInvalid:
		return ExitConfiguration

	// Exhausted - the catalog cannot reach the requested edition size
	case CodeUniquenessExhausted:
		return ExitExhausted

	default:
		return ExitFailure
	}
}
