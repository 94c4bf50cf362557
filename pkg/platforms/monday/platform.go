package monday

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// Module implements the platform contract for monday.com.
type Module struct {
	*platform.BaseModule

	mu     sync.RWMutex
	client *Client
}

// New constructs an uninitialized monday.com module.
func New(log logger.Logger) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule(Metadata(), log),
	}
}

// DefaultConfig returns the platform defaults.
func (m *Module) DefaultConfig() platform.Config {
	return DefaultConfig()
}

// Initialize validates config, builds the GraphQL client and verifies
// the API token against the authenticated-account query.
func (m *Module) Initialize(ctx context.Context, cfg platform.Config) *platform.Response[*platform.Status] {
	if err := m.ValidateConfig(cfg); err != nil {
		m.teardown()
		return platform.FailErr[*platform.Status](err)
	}

	client := NewClient(cfg, m.Logger())
	if err := client.Ping(ctx); err != nil {
		m.teardown()
		m.Logger().Warn("monday.com connectivity check failed", "error", err)
		return platform.FailErr[*platform.Status](err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	m.MarkInitialized(cfg)

	m.Logger().Info("monday.com platform initialized")
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

// CreateUser handles monday.com's invite-only onboarding. When the email
// already belongs to an account member that member is returned directly;
// otherwise the call succeeds with a pending user carrying manual
// invitation instructions. This is a documented success variant, not an
// error.
func (m *Module) CreateUser(ctx context.Context, creds platform.Credentials) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}
	if err := m.RequireCredentials(creds); err != nil {
		return platform.FailErr[*platform.User](err)
	}

	existing, err := m.api().FindUserByEmail(ctx, creds.Email)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	if existing != nil {
		m.Logger().Info("monday.com member already exists", "email", creds.Email)
		return platform.OK(normalizeUser(existing))
	}

	displayName := creds.Email
	if creds.FirstName != "" || creds.LastName != "" {
		displayName = fmt.Sprintf("%s %s", creds.FirstName, creds.LastName)
	}
	return platform.OK(&platform.User{
		Email:                    creds.Email,
		Username:                 creds.Email,
		DisplayName:              displayName,
		Status:                   platform.UserPending,
		RequiresManualInvitation: true,
		InvitationInstructions: fmt.Sprintf(
			"monday.com has no account-creation API. Invite %s from the admin console: "+
				"Admin > Users > Invite users, then assign them to the freelancer team.",
			creds.Email),
	})
}

// GetUser fetches one account member by platform-assigned id.
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

// UpdateUser supports role changes, the only member mutation the public
// API exposes. Any other update key is rejected before network I/O.
func (m *Module) UpdateUser(ctx context.Context, id string, updates map[string]any) *platform.Response[*platform.User] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[*platform.User](err)
	}

	role, ok := updates["role"].(string)
	if !ok || len(updates) != 1 {
		return platform.FailErr[*platform.User](
			errors.New(errors.ErrValidationFailed,
				"monday.com only supports updating the member role").
				WithPlatform(PlatformID).
				WithDetail("supported_fields", []string{"role"}))
	}

	native, err := m.api().UpdateUserRole(ctx, id, role)
	if err != nil {
		return platform.FailErr[*platform.User](err)
	}
	return platform.OK(normalizeUser(native))
}

// DeleteUser deactivates the member; monday.com has no hard delete.
func (m *Module) DeleteUser(ctx context.Context, id string) *platform.Response[struct{}] {
	if err := m.Guard(); err != nil {
		return platform.FailErr[struct{}](err)
	}
	if err := m.api().DeactivateUser(ctx, id); err != nil {
		return platform.FailErr[struct{}](err)
	}
	m.Logger().Info("monday.com member deactivated", "id", id)
	return platform.Done()
}

// ListUsers returns all normalized account members.
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
