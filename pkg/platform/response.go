package platform

import (
	"github.com/onboardhub/onboardhub/pkg/errors"
)

// Response is the universal envelope returned by every platform
// operation. Failures are always returned, never panicked past the
// module boundary, so callers can use this contract without recover
// at every call site.
//
// Invariant: Success=false implies Data is the zero value and Error is
// non-empty; Success=true implies Error is empty.
type Response[T any] struct {
	Success bool             `json:"success"`
	Data    T                `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
	Code    errors.ErrorCode `json:"code,omitempty"`
	Details map[string]any   `json:"details,omitempty"`
}

// OK builds a success response carrying data.
func OK[T any](data T) *Response[T] {
	return &Response[T]{Success: true, Data: data}
}

// Fail builds a failure response from a classified error.
func Fail[T any](code errors.ErrorCode, message string) *Response[T] {
	return &Response[T]{Success: false, Error: message, Code: code}
}

// FailErr builds a failure response from an error value, preserving the
// classification and structured details of ProvisionErrors.
func FailErr[T any](err error) *Response[T] {
	pErr := errors.AsProvisionError(err)
	if pErr == nil {
		return Fail[T](errors.ErrUnclassified, "unknown error")
	}
	return &Response[T]{
		Success: false,
		Error:   pErr.Message,
		Code:    pErr.Code,
		Details: pErr.Details,
	}
}

// WithDetails attaches structured details to a response.
func (r *Response[T]) WithDetails(details map[string]any) *Response[T] {
	r.Details = details
	return r
}

// IsNotInitialized reports whether the failure was the fail-fast
// initialization guard.
func (r *Response[T]) IsNotInitialized() bool {
	return !r.Success && r.Code == errors.ErrNotInitialized
}
