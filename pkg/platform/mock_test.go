package platform

import (
	"context"
	"time"
)

// mockPlatform is a configurable in-memory Platform used by registry and
// orchestration tests.
type mockPlatform struct {
	meta        Metadata
	initialized bool
	failWith    string
	panicWith   string
	closed      bool
}

func newMockPlatform(id string, category Category, features ...string) *mockPlatform {
	return &mockPlatform{
		meta: Metadata{
			ID:          id,
			Name:        id,
			DisplayName: id,
			Category:    category,
			Features:    features,
		},
	}
}

func (m *mockPlatform) Metadata() Metadata    { return m.meta }
func (m *mockPlatform) Initialized() bool     { return m.initialized }
func (m *mockPlatform) DefaultConfig() Config { return Config{} }

func (m *mockPlatform) Initialize(context.Context, Config) *Response[*Status] {
	return m.statusResponse()
}

func (m *mockPlatform) TestConnection(context.Context) *Response[*Status] {
	return m.statusResponse()
}

func (m *mockPlatform) statusResponse() *Response[*Status] {
	if m.panicWith != "" {
		panic(m.panicWith)
	}
	if m.failWith != "" {
		return Fail[*Status]("SERVICE_UNAVAILABLE", m.failWith)
	}
	m.initialized = true
	return OK(&Status{State: ConnectionActive, LastChecked: time.Now()})
}

func (m *mockPlatform) CreateUser(context.Context, Credentials) *Response[*User] {
	return OK(&User{ID: "1", Status: UserActive})
}

func (m *mockPlatform) GetUser(context.Context, string) *Response[*User] {
	return OK(&User{ID: "1", Status: UserActive})
}

func (m *mockPlatform) UpdateUser(context.Context, string, map[string]any) *Response[*User] {
	return OK(&User{ID: "1", Status: UserActive})
}

func (m *mockPlatform) DeleteUser(context.Context, string) *Response[struct{}] {
	return Done()
}

func (m *mockPlatform) ListUsers(context.Context) *Response[[]*User] {
	return OK([]*User{})
}

func (m *mockPlatform) Status(context.Context) *Status {
	if !m.initialized {
		return &Status{State: ConnectionInactive, LastChecked: time.Now()}
	}
	return &Status{State: ConnectionActive, LastChecked: time.Now()}
}

func (m *mockPlatform) Close() error {
	m.closed = true
	m.initialized = false
	return nil
}

var _ Platform = (*mockPlatform)(nil)
