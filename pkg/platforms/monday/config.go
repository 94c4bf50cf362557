// Package monday provides the monday.com platform module for OnboardHub.
// monday.com exposes no direct account-creation API: new members join
// through an invitation flow, so user creation reports a pending result
// with manual invitation instructions rather than failing.
package monday

import (
	"time"

	"github.com/onboardhub/onboardhub/pkg/platform"
	"github.com/onboardhub/onboardhub/pkg/platform/schema"
)

// PlatformID is the stable registry key for this module.
const PlatformID = "monday"

const (
	defaultBaseURL    = "https://api.monday.com/v2"
	defaultAPIVersion = "2024-10"
	defaultTimeout    = 30 * time.Second
)

// Metadata is the static descriptor for the monday.com platform.
func Metadata() platform.Metadata {
	return platform.Metadata{
		ID:          PlatformID,
		Name:        "monday",
		DisplayName: "monday.com",
		Description: "monday.com work management platform for project collaboration",
		Category:    platform.CategoryCollaboration,
		Capabilities: []platform.Capability{
			platform.CapabilityUserManagement,
			platform.CapabilityPermissionManagement,
			platform.CapabilityActivityMonitoring,
		},
		Features: []string{"boards", "project-management", "kanban", "guest-invitations"},
		ConfigSchema: schema.ConfigSchema{
			Fields: []schema.FieldSpec{
				{Name: "api_token", Type: schema.TypeString, Required: true, Secret: true,
					Description: "Personal or app API token from the monday.com admin console"},
				{Name: "base_url", Type: schema.TypeURL, Required: false,
					Description: "GraphQL endpoint override, defaults to the public API"},
				{Name: "api_version", Type: schema.TypeString, Required: false,
					Description: "API-Version header value"},
				{Name: "timeout", Type: schema.TypeDuration, Required: false,
					Description: "Per-request timeout in seconds"},
				{Name: "max_attempts", Type: schema.TypeInt, Required: false,
					Description: "Retry attempt budget for transient failures"},
				{Name: "retry_delay", Type: schema.TypeDuration, Required: false,
					Description: "Fixed delay between retry attempts in seconds"},
			},
		},
		RequiredCredentialFields: []string{"email"},
	}
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() platform.Config {
	return platform.Config{
		"api_token":    "",
		"base_url":     defaultBaseURL,
		"api_version":  defaultAPIVersion,
		"timeout":      defaultTimeout,
		"max_attempts": 3,
		"retry_delay":  time.Second,
	}
}
