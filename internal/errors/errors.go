package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// IconifyError is the structured error type for iconify.
type IconifyError struct {
	// Code is the unique error code (e.g., "ERR_303_UPSTREAM_STATUS").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable hint for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IconifyError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IconifyError) Unwrap() error {
	return e.Cause
}

// Is matches by code so errors.Is works against the exported sentinels.
func (e *IconifyError) Is(target error) bool {
	if t, ok := target.(*IconifyError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *IconifyError) WithDetail(key, value string) *IconifyError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *IconifyError) WithSuggestion(suggestion string) *IconifyError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IconifyError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *IconifyError {
	return &IconifyError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an IconifyError from an existing error.
func Wrap(code string, err error) *IconifyError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *IconifyError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// UpstreamError creates a transport-level error talking to the icon API.
// Upstream errors are retryable.
func UpstreamError(message string, cause error) *IconifyError {
	return New(ErrCodeUpstreamUnavailable, message, cause)
}

// StatusError maps a non-200 response to an error. 5xx and 429 are retryable, the rest are not.
func StatusError(status int, url string) *IconifyError {
	code := ErrCodeUpstreamRejected
	if status >= 500 || status == 429 {
		code = ErrCodeUpstreamStatus
	}
	return New(code, fmt.Sprintf("HTTP %d for URL %s", status, url), nil).
		WithDetail("status", fmt.Sprint(status)).
		WithDetail("url", url)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *IconifyError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IconifyError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if ie, ok := asIconifyError(err); ok {
		return ie.Retryable
	}
	return false
}

// GetCode extracts the error code, or "" if err is not an IconifyError.
func GetCode(err error) string {
	if ie, ok := asIconifyError(err); ok {
		return ie.Code
	}
	return ""
}

// GetCategory extracts the category, or "" if err is not an IconifyError.
func GetCategory(err error) Category {
	if ie, ok := asIconifyError(err); ok {
		return ie.Category
	}
	return ""
}

// FormatForCLI formats an error for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ie, ok := asIconifyError(err)
	if !ok {
		ie = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", ie.Message)
	if ie.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", ie.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", ie.Code)
	return sb.String()
}

func asIconifyError(err error) (*IconifyError, bool) {
	var ie *IconifyError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
