package truenas

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// Module implements the platform contract for TrueNAS SCALE.
type Module struct {
	*platform.BaseModule

	mu     sync.RWMutex
	client *Client
}

// New constructs an uninitialized TrueNAS module.
func New(log logger.Logger) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule(Metadata(), log),
	}
}

// DefaultConfig returns the platform defaults.
func (m *Module) DefaultConfig() platform.Config {
	return DefaultConfig()
}

// Initialize validates config, builds the API client and verifies
// connectivity against the system info endpoint.
func (m *Module) Initialize(ctx context.Context, cfg platform.Config) *platform.Response[*platform.Status] {
	if err := m.ValidateConfig(cfg); err != nil {
		m.teardown()
		return platform.FailErr[*platform.Status](err)
	}

	client := NewClient(cfg, m.Logger())
	if err := client.Ping(ctx); err != nil {
		m.teardown()
		m.Logger().Warn("truenas connectivity check failed", "error", err)
		return platform.FailErr[*platform.Status](err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	m.MarkInitialized(cfg)

	m.Logger().Info("truenas platform initialized", "base_url", cfg.GetString("base_url"))
	return platform.OK(&platform.Status{
		State:       platform.ConnectionActive,
		LastChecked: time.Now(),
	})
}

func (m *Module) api() *Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// teardown drops the client and returns the module to the uninitialized
// state. Every failed Initialize ends here, including a failed
// re-initialize of an already-initialized module.
func (m *Module) teardown() {
	m.mu.Lock()
	m.client = nil
	m.mu.Unlock()
	m.Reset()
}

// TestConnection performs a live connectivity check.
func (m *Module) TestConnection(ctx context.Context) *platform.Response[*platform.Status] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.Status](err)
	}
	if err := m.api().Ping(ctx); err != nil {
		return platform.FailErr[*platform.Status](err)
	}
	return platform.OK(&platform.Status{
		State:       platform.ConnectionActive,
		LastChecked: time.Now(),
	})
}

// CreateUser provisions a local TrueNAS user with SMB access.
func (m *Module) CreateUser(ctx context.Context, creds platform.Credentials) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	if err := m.RequireCredentials(creds); err != nil {
		return platform.FailErr[*platform.User](err)
	}

	native, err := m.api().CreateUser(ctx, creds)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	m.Logger().Info("truenas user created", "username", native.Username, "id", native.ID)
	return platform.OK(normalizeUser(native))
}

// GetUser fetches one user by platform-assigned id.
func (m *Module) GetUser(ctx context.Context, id string) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	nativeID, err := parseID(id)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	native, apiErr := m.api().GetUser(ctx, nativeID)
	if apiErr != nil {
		return platform.FailErr[*platform.User](apiErr)
	}
	return platform.OK(normalizeUser(native))
}

// UpdateUser applies a partial update to one user.
func (m *Module) UpdateUser(ctx context.Context, id string, updates map[string]any) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	nativeID, err := parseID(id)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	native, apiErr := m.api().UpdateUser(ctx, nativeID, updates)
	if apiErr != nil {
		return platform.FailErr[*platform.User](apiErr)
	}
	return platform.OK(normalizeUser(native))
}

// DeleteUser removes one user and its dedicated group.
func (m *Module) DeleteUser(ctx context.Context, id string) *platform.Response[struct{}] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[struct{}](err)
	}
	nativeID, err := parseID(id)
	if err != nil {
		return platform.FailErr[struct{}](err)
	}
	if apiErr := m.api().DeleteUser(ctx, nativeID); apiErr != nil {
		return platform.FailErr[struct{}](apiErr)
	}
	m.Logger().Info("truenas user deleted", "id", id)
	return platform.Done()
}

// ListUsers returns the normalized non-system accounts. Builtin accounts
// created by the TrueNAS middleware itself are filtered out.
func (m *Module) ListUsers(ctx context.Context) *platform.Response[[]*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[[]*platform.User](err)
	}
	natives, apiErr := m.api().ListUsers(ctx)
	if apiErr != nil {
		return platform.FailErr[[]*platform.User](apiErr)
	}

	users := make([]*platform.User, 0, len(natives))
	for i := range natives {
		if natives[i].Builtin {
			continue
		}
		users = append(users, normalizeUser(&natives[i]))
	}
	return platform.OK(users)
}

// Status derives the live connection state.
func (m *Module) Status(ctx context.Context) *platform.Status {
	if !m.Initialized() {
		return m.UninitializedStatus()
	}
	if err := m.api().Ping(ctx); err != nil {
		return &platform.Status{
			State:       platform.ConnectionError,
			Message:     err.Error(),
			LastChecked: time.Now(),
		}
	}
	return &platform.Status{State: platform.ConnectionActive, LastChecked: time.Now()}
}

// Close releases module resources and returns the module to the
// uninitialized state.
func (m *Module) Close() error {
	m.teardown()
	return nil
}

func parseID(id string) (int, *errors.ProvisionError) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, errors.Newf(errors.ErrValidationFailed, "invalid truenas user id %q", id).
			WithPlatform(PlatformID)
	}
	return n, nil
}

var _ platform.Platform = (*Module)(nil)
