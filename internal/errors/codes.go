// Package errors provides structured error handling for iconify.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 3XX: Upstream (network and HTTP) errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryUpstream indicates failures talking to the icon API.
	CategoryUpstream Category = "UPSTREAM"
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

	// Upstream errors (300-399)
	ErrCodeUpstreamTimeout     = "ERR_301_UPSTREAM_TIMEOUT"
	ErrCodeUpstreamUnavailable = "ERR_302_UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamStatus      = "ERR_303_UPSTREAM_STATUS"
	ErrCodeUpstreamRejected    = "ERR_304_UPSTREAM_REJECTED"
	ErrCodeUpstreamDecode      = "ERR_305_UPSTREAM_DECODE"
	ErrCodeResponseTooLarge    = "ERR_306_RESPONSE_TOO_LARGE"
	ErrCodeCircuitOpen         = "ERR_307_CIRCUIT_OPEN"

	// Validation errors (400-499)
	ErrCodeInvalidInput         = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQualifiedName = "ERR_402_INVALID_QUALIFIED_NAME"
	ErrCodeInvalidPage          = "ERR_403_INVALID_PAGE"
	ErrCodeQueryTooLong         = "ERR_404_QUERY_TOO_LONG"
	ErrCodeUnknownLibrary       = "ERR_405_UNKNOWN_LIBRARY"
	ErrCodeUnsupported          = "ERR_406_UNSUPPORTED"

	// Internal errors (500-599)
	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeAggregationFailed = "ERR_502_AGGREGATION_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '3':
		return CategoryUpstream
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if code == ErrCodeConfigInvalid {
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode reports whether an upstream call failing with code is worth repeating.
// 4xx responses from the icon API are not; 5xx and transport failures are.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeUpstreamTimeout, ErrCodeUpstreamUnavailable, ErrCodeUpstreamStatus:
		return true
	default:
		return false
	}
}
