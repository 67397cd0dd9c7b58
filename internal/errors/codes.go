// Package errors provides structured error handling for cohorts.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (data directory, index file)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and directory I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the run cannot produce an index.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid    = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_102_CONFIG_PERMISSION"

	// IO errors (200-299)
	ErrCodeDirNotFound      = "ERR_201_DIR_NOT_FOUND"
	ErrCodeNotADirectory    = "ERR_202_NOT_A_DIRECTORY"
	ErrCodePermissionDenied = "ERR_203_PERMISSION_DENIED"
	ErrCodeWriteFailed      = "ERR_204_WRITE_FAILED"
	ErrCodeReadFailed       = "ERR_205_READ_FAILED"
	ErrCodeIndexNotFound    = "ERR_206_INDEX_NOT_FOUND"
	ErrCodeIndexCorrupt     = "ERR_207_INDEX_CORRUPT"
	ErrCodeStoreFailed      = "ERR_209_STORE_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_INVALID"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDirNotFound, ErrCodeNotADirectory, ErrCodePermissionDenied, ErrCodeWriteFailed:
		return SeverityFatal
	case ErrCodeStoreFailed:
		// The JSON index is already written when the mirror fails.
		return SeverityWarning
	}
	return SeverityError
}
