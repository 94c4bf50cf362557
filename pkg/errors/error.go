// Package errors provides structured error types for OnboardHub.
package errors

import (
	"fmt"
	"time"
)

// ProvisionError represents a classified provisioning failure with
// structured context for surfacing to callers and dashboards.
type ProvisionError struct {
	Code     ErrorCode      `json:"code"`
	Message  string         `json:"message"`
	Platform string         `json:"platform,omitempty"`
	Details  map[string]any `json:"details,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Cause is the original error, not serialized.
	Cause error `json:"-"`

	// HTTPStatus is the remote status code that produced this error, if any.
	HTTPStatus int `json:"http_status,omitempty"`

	// AttemptCount records how many attempts were made before giving up.
	AttemptCount int `json:"attempt_count,omitempty"`
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s (platform: %s)", e.Code, e.Message, e.Platform)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so callers can use errors.Is with sentinel values.
func (e *ProvisionError) Is(target error) bool {
	if targetErr, ok := target.(*ProvisionError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// IsRetryable reports whether the failure is transient.
func (e *ProvisionError) IsRetryable() bool {
	return IsRetryable(e.Code)
}

// WithCause attaches the original error.
func (e *ProvisionError) WithCause(cause error) *ProvisionError {
	e.Cause = cause
	return e
}

// WithPlatform sets the platform identifier.
func (e *ProvisionError) WithPlatform(platform string) *ProvisionError {
	e.Platform = platform
	return e
}

// WithDetail attaches one structured detail entry.
func (e *ProvisionError) WithDetail(key string, value any) *ProvisionError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithHTTPStatus records the remote status code.
func (e *ProvisionError) WithHTTPStatus(status int) *ProvisionError {
	e.HTTPStatus = status
	return e
}

// WithAttemptCount records the number of attempts made.
func (e *ProvisionError) WithAttemptCount(count int) *ProvisionError {
	e.AttemptCount = count
	return e
}

// New creates a new ProvisionError.
func New(code ErrorCode, message string) *ProvisionError {
	return &ProvisionError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new ProvisionError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *ProvisionError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a classified ProvisionError.
func Wrap(err error, code ErrorCode, message string) *ProvisionError {
	return New(code, message).WithCause(err)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *ProvisionError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode extracts the error code from an error, returning ErrUnclassified
// for errors that are not ProvisionErrors.
func GetCode(err error) ErrorCode {
	if pErr, ok := err.(*ProvisionError); ok {
		return pErr.Code
	}
	return ErrUnclassified
}

// AsProvisionError converts any error to a ProvisionError, classifying
// unknown errors as unclassified.
func AsProvisionError(err error) *ProvisionError {
	if err == nil {
		return nil
	}
	if pErr, ok := err.(*ProvisionError); ok {
		return pErr
	}
	return Wrap(err, ErrUnclassified, err.Error())
}

// IsRetryableError reports whether err is a transient ProvisionError.
func IsRetryableError(err error) bool {
	if pErr, ok := err.(*ProvisionError); ok {
		return pErr.IsRetryable()
	}
	return false
}
