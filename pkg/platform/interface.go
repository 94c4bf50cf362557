package platform

import (
	"context"
)

// Platform is the uniform lifecycle-and-CRUD contract every platform
// module implements. All operations return a Response envelope rather
// than raising errors past the module boundary.
//
// Lifecycle: a module is constructed uninitialized with fixed metadata.
// Initialize validates the supplied configuration, builds the native API
// client and runs a connectivity check; on success the module becomes
// initialized, on failure it stays uninitialized. Re-initialization
// replaces the stored configuration wholesale. Every CRUD operation
// fails fast with a NOT_INITIALIZED error while uninitialized, without
// any network I/O.
type Platform interface {
	// Metadata returns the immutable platform descriptor.
	Metadata() Metadata

	// Initialized reports whether Initialize has succeeded.
	Initialized() bool

	// DefaultConfig returns a config populated with platform defaults.
	DefaultConfig() Config

	// Initialize validates config, constructs the API client and checks
	// connectivity. On validation failure the response details carry a
	// per-field error map.
	Initialize(ctx context.Context, cfg Config) *Response[*Status]

	// TestConnection performs a live connectivity check.
	TestConnection(ctx context.Context) *Response[*Status]

	// CreateUser provisions an account on the remote platform. Platforms
	// without a direct account-creation API return success with
	// RequiresManualInvitation set on the user.
	CreateUser(ctx context.Context, creds Credentials) *Response[*User]

	// GetUser fetches one remote account by platform-assigned id.
	GetUser(ctx context.Context, id string) *Response[*User]

	// UpdateUser applies a partial update to a remote account.
	UpdateUser(ctx context.Context, id string, updates map[string]any) *Response[*User]

	// DeleteUser removes (or deactivates, where the platform offers no
	// hard delete) a remote account.
	DeleteUser(ctx context.Context, id string) *Response[struct{}]

	// ListUsers returns all normalized remote accounts, excluding
	// builtin/system accounts on platforms that expose them.
	ListUsers(ctx context.Context) *Response[[]*User]

	// Status derives the live connection state: inactive while
	// uninitialized, otherwise the outcome of a connection test. The
	// result is never cached beyond the single call.
	Status(ctx context.Context) *Status

	// Close releases any resources held by the module and returns it to
	// the uninitialized state.
	Close() error
}

// Done builds the empty success response used by delete operations.
func Done() *Response[struct{}] {
	return OK(struct{}{})
}
