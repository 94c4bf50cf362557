// Package platforms wires every built-in platform module into a registry.
package platforms

import (
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
	"github.com/onboardhub/onboardhub/pkg/platforms/monday"
	"github.com/onboardhub/onboardhub/pkg/platforms/rustdesk"
	"github.com/onboardhub/onboardhub/pkg/platforms/truenas"
)

// RegisterAll constructs every built-in platform module and registers it
// into the given registry. Modules start uninitialized; the caller
// initializes each one with its stored configuration.
func RegisterAll(reg *platform.Registry, log logger.Logger) {
	reg.Register(truenas.New(log))
	reg.Register(monday.New(log))
	reg.Register(rustdesk.New(log))
}

// NewRegistry builds a registry pre-populated with all built-in modules.
func NewRegistry(log logger.Logger) *platform.Registry {
	reg := platform.NewRegistry(log)
	RegisterAll(reg, log)
	return reg
}
