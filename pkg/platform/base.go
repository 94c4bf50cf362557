package platform

import (
	"strings"
	"sync"
	"time"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
)

// BaseModule provides the shared lifecycle state and pre-condition checks
// for platform module implementations. Concrete modules embed it and call
// Guard and MissingCredentialFields explicitly before delegating to their
// API client, keeping the "guard then delegate" behavior without
// inheritance.
type BaseModule struct {
	meta Metadata
	log  logger.Logger

	mu          sync.RWMutex
	cfg         Config
	initialized bool
}

// NewBaseModule creates the shared module state for the given metadata.
func NewBaseModule(meta Metadata, log logger.Logger) *BaseModule {
	if log == nil {
		log = logger.Discard
	}
	return &BaseModule{meta: meta, log: log}
}

// Metadata returns the immutable platform descriptor.
func (b *BaseModule) Metadata() Metadata {
	return b.meta
}

// Logger returns the module logger.
func (b *BaseModule) Logger() logger.Logger {
	return b.log
}

// Initialized reports whether the module has been successfully initialized.
func (b *BaseModule) Initialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Config returns a copy of the stored configuration.
func (b *BaseModule) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg.Clone()
}

// MarkInitialized atomically replaces the stored configuration and
// transitions the module to initialized.
func (b *BaseModule) MarkInitialized(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg.Clone()
	b.initialized = true
}

// Reset returns the module to the uninitialized state.
func (b *BaseModule) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = nil
	b.initialized = false
}

// ValidateConfig runs the metadata schema over a candidate configuration
// and returns a classified error with per-field details on failure.
func (b *BaseModule) ValidateConfig(cfg Config) *errors.ProvisionError {
	result := b.meta.ConfigSchema.Validate(cfg)
	if result.Valid {
		return nil
	}
	return errors.New(errors.ErrInvalidConfiguration, "configuration failed validation").
		WithPlatform(b.meta.ID).
		WithDetail("fields", result.ErrorDetails()).
		WithDetail("missing_fields", result.MissingFields())
}

// Guard returns a NOT_INITIALIZED error when the module has not been
// initialized, and nil otherwise. Operations call it first so that no
// network I/O is attempted on an uninitialized module.
func (b *BaseModule) Guard() *errors.ProvisionError {
	if b.Initialized() {
		return nil
	}
	return errors.New(errors.ErrNotInitialized, "platform is not initialized").
		WithPlatform(b.meta.ID)
}

// MissingCredentialFields returns the metadata-declared required
// credential fields absent from the given credentials.
func (b *BaseModule) MissingCredentialFields(creds Credentials) []string {
	var missing []string
	for _, field := range b.meta.RequiredCredentialFields {
		if strings.TrimSpace(creds.Field(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// RequireCredentials validates credentials against the metadata-declared
// required fields, returning a classified error naming exactly the
// missing fields.
func (b *BaseModule) RequireCredentials(creds Credentials) *errors.ProvisionError {
	missing := b.MissingCredentialFields(creds)
	if len(missing) == 0 {
		return nil
	}
	return errors.New(errors.ErrValidationFailed, "required credential fields are missing").
		WithPlatform(b.meta.ID).
		WithDetail("missing_fields", missing)
}

// UninitializedStatus is the status reported while the module has no
// configuration.
func (b *BaseModule) UninitializedStatus() *Status {
	return &Status{
		State:       ConnectionInactive,
		Message:     "platform is not initialized",
		LastChecked: time.Now(),
	}
}
