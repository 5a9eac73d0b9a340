// Package errors provides structured error handling for scout.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk, persisted artifacts)
//   - 3XX: Provider errors (embedding backends, ANN backends)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryProvider indicates optional-backend errors (embedder, ANN).
	CategoryProvider Category = "PROVIDER"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound  = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileTooLarge  = "ERR_202_FILE_TOO_LARGE"
	ErrCodeCorruptIndex  = "ERR_203_CORRUPT_INDEX"
	ErrCodeStaleArtifact = "ERR_204_STALE_ARTIFACT"
	ErrCodeBuildLocked   = "ERR_205_BUILD_LOCKED"

	// Provider errors (300-399)
	ErrCodeEmbedderUnavailable = "ERR_301_EMBEDDER_UNAVAILABLE"
	ErrCodeANNUnavailable      = "ERR_302_ANN_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"
	ErrCodeInvalidPath       = "ERR_404_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
	ErrCodeSearchFailed    = "ERR_503_SEARCH_FAILED"
	ErrCodeIndexFailed     = "ERR_504_INDEX_FAILED"
	ErrCodeGraphFailed     = "ERR_505_GRAPH_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryProvider
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the default severity for a code.
// Provider errors are warnings: the engine degrades instead of aborting.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryProvider:
		return SeverityWarning
	case CategoryConfig:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether operations failing with this code
// can be retried without intervention.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeBuildLocked, ErrCodeEmbedderUnavailable, ErrCodeANNUnavailable:
		return true
	default:
		return false
	}
}
