// Package rustdesk provides the RustDesk Server Pro platform module for
// OnboardHub. Freelancers receive console accounts on the organization's
// self-hosted screen-sharing server.
package rustdesk

import (
	"time"

	"github.com/onboardhub/onboardhub/pkg/platform"
	"github.com/onboardhub/onboardhub/pkg/platform/schema"
)

// PlatformID is the stable registry key for this module.
const PlatformID = "rustdesk"

const defaultTimeout = 30 * time.Second

// Metadata is the static descriptor for the RustDesk platform.
func Metadata() platform.Metadata {
	return platform.Metadata{
		ID:          PlatformID,
		Name:        "rustdesk",
		DisplayName: "RustDesk Server Pro",
		Description: "Self-hosted RustDesk server for remote desktop and screen sharing",
		Category:    platform.CategoryScreenSharing,
		Capabilities: []platform.Capability{
			platform.CapabilityUserManagement,
			platform.CapabilityGroupManagement,
			platform.CapabilityActivityMonitoring,
		},
		Features: []string{"remote-desktop", "screen-sharing", "unattended-access"},
		ConfigSchema: schema.ConfigSchema{
			Fields: []schema.FieldSpec{
				{Name: "base_url", Type: schema.TypeURL, Required: true,
					Description: "RustDesk server console URL, e.g. https://rustdesk.example.com"},
				{Name: "api_token", Type: schema.TypeString, Required: true, Secret: true,
					Description: "Console API token with user administration scope"},
				{Name: "group_name", Type: schema.TypeString, Required: false,
					Description: "Device group new users are assigned to"},
				{Name: "timeout", Type: schema.TypeDuration, Required: false,
					Description: "Per-request timeout in seconds"},
				{Name: "max_attempts", Type: schema.TypeInt, Required: false,
					Description: "Retry attempt budget for transient failures"},
				{Name: "retry_delay", Type: schema.TypeDuration, Required: false,
					Description: "Fixed delay between retry attempts in seconds"},
			},
		},
		RequiredCredentialFields: []string{"username", "password", "email"},
	}
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() platform.Config {
	return platform.Config{
		"base_url":     "",
		"api_token":    "",
		"group_name":   "freelancers",
		"timeout":      defaultTimeout,
		"max_attempts": 3,
		"retry_delay":  time.Second,
	}
}
