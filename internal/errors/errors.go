// Package errors defines the application error taxonomy and its handling.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
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

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewValidationError covers rejected user input, such as an unknown level or
// access value.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("قيمة غير صالحة. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStorageError covers session store failures.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("Storage error: %s", underlyingMsg),
		UserMessage: "مشكلة مؤقتة، حاول لاحقًا",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewGenerationError covers failures of the content generation backend that
// could not be hidden by the static fallback.
func NewGenerationError(backend string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("Generation backend error: %s", backend),
		UserMessage: "خدمة المحتوى غير متاحة مؤقتًا",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStateError covers operations rejected by the progress gate.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "هذه العملية غير ممكنة في حالتك الحالية",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}

// NewRateLimitError covers throttled users.
func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("طلبات كثيرة جدًا. حاول بعد %d ثانية", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
