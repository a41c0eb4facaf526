// Package errors defines the application error taxonomy and centralized reporting.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an internal message for logs and a localization key for the
// short text shown to the user. Raw diagnostics never reach chat.
type AppError struct {
	Code           string
	Message        string
	UserMessageKey string
	Severity       Severity
	Retryable      bool
	cause          error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewValidationError marks user input that failed a local check.
func NewValidationError(msg, userMessageKey string) *AppError {
	return &AppError{
		Code:           "E100",
		Message:        msg,
		UserMessageKey: userMessageKey,
		Severity:       SeverityLow,
		Retryable:      false,
	}
}

// NewStorageError marks a profile document I/O failure.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:           "E200",
		Message:        fmt.Sprintf("profile storage error: %s", underlyingMsg),
		UserMessageKey: "internal_error",
		Severity:       SeverityHigh,
		Retryable:      true,
		cause:          cause,
	}
}

// NewWeatherAPIError marks a failed weather provider call. The user message
// key depends on which lookup failed.
func NewWeatherAPIError(userMessageKey string, cause error) *AppError {
	return &AppError{
		Code:           "E300",
		Message:        fmt.Sprintf("weather API error: %v", cause),
		UserMessageKey: userMessageKey,
		Severity:       SeverityMedium,
		Retryable:      true,
		cause:          cause,
	}
}

// NewStateError marks a conversation state inconsistency.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:           "E400",
		Message:        msg,
		UserMessageKey: "internal_error",
		Severity:       SeverityMedium,
		Retryable:      false,
	}
}

// NewRateLimitError marks a throttled update.
func NewRateLimitError() *AppError {
	return &AppError{
		Code:           "E500",
		Message:        "rate limit exceeded",
		UserMessageKey: "rate_limited",
		Severity:       SeverityLow,
		Retryable:      false,
	}
}
