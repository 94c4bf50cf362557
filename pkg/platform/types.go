// Package platform provides the unified platform module contract and
// registry for OnboardHub. A platform module adapts one external SaaS
// platform (storage server, screen-sharing tool, project-management tool)
// to a single lifecycle-and-CRUD contract for provisioning freelancer
// accounts.
package platform

import (
	"time"

	"github.com/onboardhub/onboardhub/pkg/platform/schema"
)

// Category classifies a platform by the kind of service it provides.
type Category string

const (
	CategoryScreenSharing Category = "screen-sharing"
	CategoryFileSharing   Category = "file-sharing"
	CategoryCollaboration Category = "collaboration"
	CategoryCommunication Category = "communication"
)

// Capability represents a provisioning feature a platform supports.
type Capability string

const (
	CapabilityUserManagement       Capability = "user-management"
	CapabilityGroupManagement      Capability = "group-management"
	CapabilityPermissionManagement Capability = "permission-management"
	CapabilityActivityMonitoring   Capability = "activity-monitoring"
	CapabilityShareManagement      Capability = "share-management"
)

// Metadata is the static descriptor of a platform module. It is fixed at
// construction time and never mutated afterwards.
type Metadata struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	DisplayName  string              `json:"display_name"`
	Description  string              `json:"description"`
	Category     Category            `json:"category"`
	Capabilities []Capability        `json:"capabilities"`
	Features     []string            `json:"features"`
	ConfigSchema schema.ConfigSchema `json:"config_schema"`

	// RequiredCredentialFields lists the credential fields a create-user
	// call must supply for this platform.
	RequiredCredentialFields []string `json:"required_credential_fields"`
}

// HasCapability reports whether the platform declares a capability.
func (m Metadata) HasCapability(cap Capability) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Config is the runtime configuration supplied to a platform module at
// initialization time: API keys, base URLs, account identifiers, timeouts.
// It is replaced wholesale on re-initialization, never partially mutated.
type Config map[string]any

// GetString returns a string config value, or "" when absent or not a string.
func (c Config) GetString(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// GetInt returns an integer config value, accepting int and float64
// (JSON-decoded) representations.
func (c Config) GetInt(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// GetDuration returns a duration config value, accepting time.Duration
// or a number of seconds.
func (c Config) GetDuration(key string) (time.Duration, bool) {
	switch v := c[key].(type) {
	case time.Duration:
		return v, true
	case int:
		return time.Duration(v) * time.Second, true
	case float64:
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

// Clone returns a shallow copy so stored config cannot be mutated by callers.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	clone := make(Config, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// Credentials carries the data needed to create a user on a remote
// platform. It is constructed per call and not persisted by this layer.
type Credentials struct {
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Password  string         `json:"password"`
	Role      string         `json:"role"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Field returns a named credential field as a string. Fields not covered
// by the struct are looked up in the metadata bag.
func (c Credentials) Field(name string) string {
	switch name {
	case "email":
		return c.Email
	case "username":
		return c.Username
	case "first_name":
		return c.FirstName
	case "last_name":
		return c.LastName
	case "password":
		return c.Password
	case "role":
		return c.Role
	}
	if v, ok := c.Metadata[name].(string); ok {
		return v
	}
	return ""
}

// UserStatus is the normalized status of a remote account.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserPending   UserStatus = "pending"
	UserSuspended UserStatus = "suspended"
)

// User is the normalized cross-platform representation of a remote
// account. The platform-assigned ID is authoritative and never
// recomputed locally.
type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name,omitempty"`
	Status      UserStatus     `json:"status"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	// RequiresManualInvitation marks the documented success variant for
	// platforms without a direct account-creation API: the account is
	// pending until an operator completes the invitation flow described
	// in InvitationInstructions.
	RequiresManualInvitation bool   `json:"requires_manual_invitation,omitempty"`
	InvitationInstructions   string `json:"invitation_instructions,omitempty"`
}

// ConnectionState describes the live availability of a platform.
type ConnectionState string

const (
	ConnectionActive   ConnectionState = "active"
	ConnectionInactive ConnectionState = "inactive"
	ConnectionError    ConnectionState = "error"
)

// Status is the derived, per-call status of a platform module. It is
// computed live on each request, never cached beyond the single call.
type Status struct {
	State       ConnectionState `json:"state"`
	Message     string          `json:"message,omitempty"`
	LastChecked time.Time       `json:"last_checked"`
}
