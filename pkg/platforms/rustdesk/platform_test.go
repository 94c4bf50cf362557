package rustdesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

func testConfig(baseURL string) platform.Config {
	return platform.Config{
		"base_url":    baseURL,
		"api_token":   "test-token",
		"group_name":  "contractors",
		"retry_delay": time.Millisecond,
	}
}

func newRustDeskServer(t *testing.T, users map[string]nativeUser) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(versionResponse{Version: "1.3.0"})
	})

	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list := make([]nativeUser, 0, len(users))
			for _, u := range users {
				list = append(list, u)
			}
			_ = json.NewEncoder(w).Encode(userListResponse{Total: len(list), Data: list})
		case http.MethodPost:
			var req createUserRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			user := nativeUser{
				GUID:      "guid-" + req.Name,
				Name:      req.Name,
				Email:     req.Email,
				Status:    statusNormal,
				GroupName: req.GroupName,
			}
			users[user.GUID] = user
			_ = json.NewEncoder(w).Encode(user)
		}
	})

	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		guid := strings.TrimPrefix(r.URL.Path, "/api/users/")
		user, ok := users[guid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(user)
		case http.MethodPut:
			var updates map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updates))
			if status, ok := updates["status"].(float64); ok {
				user.Status = int(status)
			}
			users[guid] = user
			_ = json.NewEncoder(w).Encode(user)
		case http.MethodDelete:
			delete(users, guid)
			w.WriteHeader(http.StatusOK)
		}
	})

	return httptest.NewServer(mux)
}

func TestMetadata(t *testing.T) {
	meta := Metadata()
	assert.Equal(t, PlatformID, meta.ID)
	assert.Equal(t, platform.CategoryScreenSharing, meta.Category)
	assert.Contains(t, meta.Features, "screen-sharing")
}

func TestOperationsBeforeInitializeFailFast(t *testing.T) {
	m := New(nil)
	ctx := context.Background()

	assert.True(t, m.TestConnection(ctx).IsNotInitialized())
	assert.True(t, m.CreateUser(ctx, platform.Credentials{}).IsNotInitialized())
	assert.True(t, m.GetUser(ctx, "guid").IsNotInitialized())
	assert.True(t, m.DeleteUser(ctx, "guid").IsNotInitialized())
}

func TestInitializeValidation(t *testing.T) {
	m := New(nil)
	resp := m.Initialize(context.Background(), platform.Config{"base_url": "not a url"})

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrInvalidConfiguration, resp.Code)
}

func TestReinitializeValidationFailureLeavesUninitialized(t *testing.T) {
	server := newRustDeskServer(t, map[string]nativeUser{})
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	// A failed re-initialize must not leave the module running on the
	// previous config.
	resp := m.Initialize(ctx, platform.Config{})

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrInvalidConfiguration, resp.Code)
	assert.False(t, m.Initialized())
	assert.True(t, m.ListUsers(ctx).IsNotInitialized())
}

func TestUserLifecycle(t *testing.T) {
	users := map[string]nativeUser{}
	server := newRustDeskServer(t, users)
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	created := m.CreateUser(ctx, platform.Credentials{
		Username: "anna", Password: "pw123456", Email: "anna@example.com",
	})
	require.True(t, created.Success, created.Error)
	assert.Equal(t, "guid-anna", created.Data.ID)
	assert.Equal(t, platform.UserActive, created.Data.Status)
	assert.Equal(t, "contractors", created.Data.Metadata["group"])

	fetched := m.GetUser(ctx, "guid-anna")
	require.True(t, fetched.Success)
	assert.Equal(t, "anna@example.com", fetched.Data.Email)

	suspended := m.UpdateUser(ctx, "guid-anna", map[string]any{"status": statusDisabled})
	require.True(t, suspended.Success)
	assert.Equal(t, platform.UserSuspended, suspended.Data.Status)

	listed := m.ListUsers(ctx)
	require.True(t, listed.Success)
	assert.Len(t, listed.Data, 1)

	deleted := m.DeleteUser(ctx, "guid-anna")
	require.True(t, deleted.Success)

	gone := m.GetUser(ctx, "guid-anna")
	require.False(t, gone.Success)
	assert.Equal(t, errors.ErrNotFound, gone.Code)
}

func TestNormalizeUserStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   platform.UserStatus
	}{
		{"Normal", statusNormal, platform.UserActive},
		{"Disabled", statusDisabled, platform.UserSuspended},
		{"Unregistered", statusUnregistered, platform.UserPending},
		{"Unknown value", 99, platform.UserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := nativeUser{Status: tt.status}
			assert.Equal(t, tt.want, normalizeUser(&u).Status)
		})
	}
}
