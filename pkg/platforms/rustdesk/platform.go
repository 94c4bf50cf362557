package rustdesk

import (
	"context"
	"sync"
	"time"

	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// Module implements the platform contract for RustDesk Server Pro.
type Module struct {
	*platform.BaseModule

	mu     sync.RWMutex
	client *Client
}

// New constructs an uninitialized RustDesk module.
func New(log logger.Logger) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule(Metadata(), log),
	}
}

// DefaultConfig returns the platform defaults.
func (m *Module) DefaultConfig() platform.Config {
	return DefaultConfig()
}

// Initialize validates config, builds the console API client and checks
// connectivity against the version endpoint.
func (m *Module) Initialize(ctx context.Context, cfg platform.Config) *platform.Response[*platform.Status] {
	if err := m.ValidateConfig(cfg); err != nil {
		m.teardown()
		return platform.FailErr[*platform.Status](err)
	}

	client := NewClient(cfg, m.Logger())
	if err := client.Ping(ctx); err != nil {
		m.teardown()
		m.Logger().Warn("rustdesk connectivity check failed", "error", err)
		return platform.FailErr[*platform.Status](err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	m.MarkInitialized(cfg)

	m.Logger().Info("rustdesk platform initialized", "base_url", cfg.GetString("base_url"))
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

// CreateUser provisions a console account in the configured device group.
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
	m.Logger().Info("rustdesk user created", "username", native.Name, "guid", native.GUID)
	return platform.OK(normalizeUser(native))
}

// GetUser fetches one console account by platform-assigned guid.
func (m *Module) GetUser(ctx context.Context, id string) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	native, err := m.api().GetUser(ctx, id)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	return platform.OK(normalizeUser(native))
}

// UpdateUser applies a partial update to one console account.
func (m *Module) UpdateUser(ctx context.Context, id string, updates map[string]any) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	native, err := m.api().UpdateUser(ctx, id, updates)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	return platform.OK(normalizeUser(native))
}

// DeleteUser removes one console account.
func (m *Module) DeleteUser(ctx context.Context, id string) *platform.Response[struct{}] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[struct{}](err)
	}
	if err := m.api().DeleteUser(ctx, id); err != nil {
		return platform.FailErr[struct{}](err)
	}
	m.Logger().Info("rustdesk user deleted", "guid", id)
	return platform.Done()
}

// ListUsers returns all normalized console accounts.
func (m *Module) ListUsers(ctx context.Context) *platform.Response[[]*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[[]*platform.User](err)
	}
	natives, err := m.api().ListUsers(ctx)
	if err != nil {
		return platform.FailErr[[]*platform.User](err)
	}
	users := make([]*platform.User, 0, len(natives))
	for i := range natives {
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

var _ platform.Platform = (*Module)(nil)
