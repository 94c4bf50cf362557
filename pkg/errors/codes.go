// Package errors provides error codes for OnboardHub provisioning operations.
package errors

// ErrorCode classifies a provisioning failure.
type ErrorCode string

// Configuration and lifecycle error codes
const (
	// ErrInvalidConfiguration indicates the supplied configuration failed validation.
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	// ErrNotInitialized indicates an operation was attempted before a successful Initialize.
	ErrNotInitialized ErrorCode = "NOT_INITIALIZED"
)

// Remote platform error codes
const (
	// ErrUnauthorized indicates bad or expired credentials.
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrForbidden indicates insufficient remote permissions.
	ErrForbidden ErrorCode = "FORBIDDEN"

	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound ErrorCode = "NOT_FOUND"

	// ErrRateLimited indicates the remote platform throttled the request.
	ErrRateLimited ErrorCode = "RATE_LIMITED"

	// ErrValidationFailed indicates the remote platform rejected the payload shape.
	ErrValidationFailed ErrorCode = "VALIDATION_ERROR"

	// ErrServiceUnavailable indicates a 5xx response or a request timeout.
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrNetworkFailure indicates no response was received at all.
	ErrNetworkFailure ErrorCode = "NETWORK_FAILURE"

	// ErrUnclassified indicates an API error that matched no other class.
	ErrUnclassified ErrorCode = "UNCLASSIFIED"
)

// Registry and orchestration error codes
const (
	// ErrPlatformNotFound indicates a platform id is not present in the registry.
	ErrPlatformNotFound ErrorCode = "PLATFORM_NOT_FOUND"

	// ErrOperationPanicked indicates a platform module panicked during a bulk operation.
	ErrOperationPanicked ErrorCode = "OPERATION_PANICKED"
)

// ErrorCodeInfo provides metadata about an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode `json:"code"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Retryable   bool      `json:"retryable"`
}

var errorCodeInfoMap = map[ErrorCode]ErrorCodeInfo{
	ErrInvalidConfiguration: {
		Code: ErrInvalidConfiguration, Category: "configuration",
		Description: "Configuration failed schema validation", Retryable: false,
	},
	ErrNotInitialized: {
		Code: ErrNotInitialized, Category: "lifecycle",
		Description: "Platform module has not been initialized", Retryable: false,
	},
	ErrUnauthorized: {
		Code: ErrUnauthorized, Category: "auth",
		Description: "Credentials were rejected by the platform", Retryable: false,
	},
	ErrForbidden: {
		Code: ErrForbidden, Category: "auth",
		Description: "Credentials lack the required permissions", Retryable: false,
	},
	ErrNotFound: {
		Code: ErrNotFound, Category: "platform",
		Description: "Remote resource was not found", Retryable: false,
	},
	ErrRateLimited: {
		Code: ErrRateLimited, Category: "rate_limit",
		Description: "Request was throttled by the platform", Retryable: true,
	},
	ErrValidationFailed: {
		Code: ErrValidationFailed, Category: "platform",
		Description: "Platform rejected the request payload", Retryable: false,
	},
	ErrServiceUnavailable: {
		Code: ErrServiceUnavailable, Category: "network",
		Description: "Platform is temporarily unavailable", Retryable: true,
	},
	ErrNetworkFailure: {
		Code: ErrNetworkFailure, Category: "network",
		Description: "No response received from the platform", Retryable: true,
	},
	ErrUnclassified: {
		Code: ErrUnclassified, Category: "platform",
		Description: "Unclassified platform API error", Retryable: false,
	},
	ErrPlatformNotFound: {
		Code: ErrPlatformNotFound, Category: "registry",
		Description: "Platform id is not registered", Retryable: false,
	},
	ErrOperationPanicked: {
		Code: ErrOperationPanicked, Category: "orchestration",
		Description: "Platform module panicked during a bulk operation", Retryable: false,
	},
}

// GetErrorCodeInfo returns metadata about an error code.
func GetErrorCodeInfo(code ErrorCode) ErrorCodeInfo {
	info, exists := errorCodeInfoMap[code]
	if !exists {
		return ErrorCodeInfo{
			Code:        code,
			Category:    "unknown",
			Description: "Unknown error code",
			Retryable:   false,
		}
	}
	return info
}

// IsRetryable reports whether an error code represents a transient failure.
// Only rate limiting, 5xx responses and network-level failures qualify.
func IsRetryable(code ErrorCode) bool {
	return GetErrorCodeInfo(code).Retryable
}

// GetCategory returns the category of an error code.
func GetCategory(code ErrorCode) string {
	return GetErrorCodeInfo(code).Category
}
