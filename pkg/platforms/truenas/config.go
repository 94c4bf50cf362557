// Package truenas provides the TrueNAS SCALE platform module for
// OnboardHub. Freelancer accounts are provisioned as local TrueNAS users
// so they can reach SMB shares on the organization's storage server.
package truenas

import (
	"time"

	"github.com/onboardhub/onboardhub/pkg/platform"
	"github.com/onboardhub/onboardhub/pkg/platform/schema"
)

// PlatformID is the stable registry key for this module.
const PlatformID = "truenas"

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v2.0"
)

var (
	minAttempts = 1
	maxAttempts = 10
)

// Metadata is the static descriptor for the TrueNAS platform.
func Metadata() platform.Metadata {
	return platform.Metadata{
		ID:          PlatformID,
		Name:        "truenas",
		DisplayName: "TrueNAS SCALE",
		Description: "Self-hosted TrueNAS storage server with SMB file sharing",
		Category:    platform.CategoryFileSharing,
		Capabilities: []platform.Capability{
			platform.CapabilityUserManagement,
			platform.CapabilityGroupManagement,
			platform.CapabilityShareManagement,
		},
		Features: []string{"smb", "nfs", "local-users", "home-directories"},
		ConfigSchema: schema.ConfigSchema{
			Fields: []schema.FieldSpec{
				{Name: "base_url", Type: schema.TypeURL, Required: true,
					Description: "TrueNAS web UI base URL, e.g. https://nas.example.com"},
				{Name: "api_key", Type: schema.TypeString, Required: true, Secret: true,
					Description: "API key created under Settings > API Keys"},
				{Name: "timeout", Type: schema.TypeDuration, Required: false,
					Description: "Per-request timeout in seconds"},
				{Name: "max_attempts", Type: schema.TypeInt, Required: false,
					Min: &minAttempts, Max: &maxAttempts,
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
		"api_key":      "",
		"timeout":      defaultTimeout,
		"max_attempts": 3,
		"retry_delay":  time.Second,
	}
}
