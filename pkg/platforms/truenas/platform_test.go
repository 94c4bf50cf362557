package truenas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
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
		"api_key":     "test-key",
		"retry_delay": time.Millisecond,
	}
}

// newTrueNASServer serves the subset of the v2.0 API the module touches.
func newTrueNASServer(t *testing.T, users map[int]nativeUser) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v2.0/system/info", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(systemInfo{Version: "24.04", Hostname: "nas"})
	})

	mux.HandleFunc("/api/v2.0/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list := make([]nativeUser, 0, len(users))
			for _, u := range users {
				list = append(list, u)
			}
			_ = json.NewEncoder(w).Encode(list)
		case http.MethodPost:
			var req createUserRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			id := 100 + len(users)
			users[id] = nativeUser{
				ID: id, UID: 3000 + len(users),
				Username: req.Username, FullName: req.FullName,
				Email: req.Email, SMB: req.SMB,
			}
			_ = json.NewEncoder(w).Encode(id)
		}
	})

	mux.HandleFunc("/api/v2.0/user/id/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/v2.0/user/id/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		user, ok := users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "user does not exist"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(user)
		case http.MethodPut:
			var updates map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updates))
			if locked, ok := updates["locked"].(bool); ok {
				user.Locked = locked
			}
			users[id] = user
			_ = json.NewEncoder(w).Encode(user)
		case http.MethodDelete:
			delete(users, id)
			_ = json.NewEncoder(w).Encode(true)
		}
	})

	return httptest.NewServer(mux)
}

func TestMetadata(t *testing.T) {
	meta := Metadata()
	assert.Equal(t, PlatformID, meta.ID)
	assert.Equal(t, platform.CategoryFileSharing, meta.Category)
	assert.Contains(t, meta.Features, "smb")
	assert.ElementsMatch(t, []string{"username", "password", "email"}, meta.RequiredCredentialFields)
}

func TestOperationsBeforeInitializeFailFast(t *testing.T) {
	// No server: the guard must reject before any network I/O happens.
	m := New(nil)
	ctx := context.Background()

	assert.True(t, m.TestConnection(ctx).IsNotInitialized())
	assert.True(t, m.CreateUser(ctx, platform.Credentials{}).IsNotInitialized())
	assert.True(t, m.GetUser(ctx, "1").IsNotInitialized())
	assert.True(t, m.UpdateUser(ctx, "1", nil).IsNotInitialized())
	assert.True(t, m.DeleteUser(ctx, "1").IsNotInitialized())
	assert.True(t, m.ListUsers(ctx).IsNotInitialized())

	status := m.Status(ctx)
	assert.Equal(t, platform.ConnectionInactive, status.State)
}

func TestInitializeValidation(t *testing.T) {
	m := New(nil)

	resp := m.Initialize(context.Background(), platform.Config{})

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrInvalidConfiguration, resp.Code)
	assert.ElementsMatch(t, []string{"base_url", "api_key"}, resp.Details["missing_fields"])
	assert.False(t, m.Initialized())
}

func TestInitializeConnectivityFailureLeavesUninitialized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	m := New(nil)
	resp := m.Initialize(context.Background(), testConfig(server.URL))

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrUnauthorized, resp.Code)
	assert.False(t, m.Initialized())
}

func TestReinitializeValidationFailureLeavesUninitialized(t *testing.T) {
	server := newTrueNASServer(t, map[int]nativeUser{})
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

func TestInitializeAndLifecycle(t *testing.T) {
	users := map[int]nativeUser{
		1: {ID: 1, UID: 0, Username: "root", Builtin: true},
	}
	server := newTrueNASServer(t, users)
	defer server.Close()

	m := New(nil)
	ctx := context.Background()

	resp := m.Initialize(ctx, testConfig(server.URL))
	require.True(t, resp.Success, "initialize failed: %s", resp.Error)
	assert.Equal(t, platform.ConnectionActive, resp.Data.State)
	assert.True(t, m.Initialized())

	t.Run("CreateUser", func(t *testing.T) {
		created := m.CreateUser(ctx, platform.Credentials{
			Username:  "anna",
			Password:  "pw123456",
			Email:     "anna@example.com",
			FirstName: "Anna",
			LastName:  "Nagy",
		})
		require.True(t, created.Success, created.Error)
		assert.Equal(t, "anna", created.Data.Username)
		assert.Equal(t, "Anna Nagy", created.Data.DisplayName)
		assert.Equal(t, platform.UserActive, created.Data.Status)
		assert.Equal(t, true, created.Data.Metadata["smb"])
		assert.NotEmpty(t, created.Data.ID)
	})

	t.Run("CreateUser missing credentials", func(t *testing.T) {
		resp := m.CreateUser(ctx, platform.Credentials{Username: "bob"})
		require.False(t, resp.Success)
		assert.Equal(t, errors.ErrValidationFailed, resp.Code)
		assert.ElementsMatch(t, []string{"password", "email"}, resp.Details["missing_fields"])
	})

	t.Run("ListUsers filters builtin accounts", func(t *testing.T) {
		resp := m.ListUsers(ctx)
		require.True(t, resp.Success)
		for _, u := range resp.Data {
			assert.NotEqual(t, "root", u.Username)
		}
	})

	t.Run("UpdateUser locked maps to suspended", func(t *testing.T) {
		created := m.CreateUser(ctx, platform.Credentials{
			Username: "carol", Password: "pw123456", Email: "carol@example.com",
		})
		require.True(t, created.Success)

		updated := m.UpdateUser(ctx, created.Data.ID, map[string]any{"locked": true})
		require.True(t, updated.Success)
		assert.Equal(t, platform.UserSuspended, updated.Data.Status)
	})

	t.Run("GetUser not found", func(t *testing.T) {
		resp := m.GetUser(ctx, "9999")
		require.False(t, resp.Success)
		assert.Equal(t, errors.ErrNotFound, resp.Code)
	})

	t.Run("Invalid id rejected locally", func(t *testing.T) {
		resp := m.GetUser(ctx, "not-a-number")
		require.False(t, resp.Success)
		assert.Equal(t, errors.ErrValidationFailed, resp.Code)
	})

	t.Run("DeleteUser", func(t *testing.T) {
		created := m.CreateUser(ctx, platform.Credentials{
			Username: "dave", Password: "pw123456", Email: "dave@example.com",
		})
		require.True(t, created.Success)

		deleted := m.DeleteUser(ctx, created.Data.ID)
		assert.True(t, deleted.Success)

		gone := m.GetUser(ctx, created.Data.ID)
		assert.False(t, gone.Success)
	})

	t.Run("Status live check", func(t *testing.T) {
		status := m.Status(ctx)
		assert.Equal(t, platform.ConnectionActive, status.State)
		assert.False(t, status.LastChecked.IsZero())
	})

	t.Run("Close returns module to uninitialized", func(t *testing.T) {
		require.NoError(t, m.Close())
		assert.False(t, m.Initialized())
		assert.True(t, m.ListUsers(ctx).IsNotInitialized())
	})
}

func TestClientRetriesTransientFailuresDuringPing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(systemInfo{Version: "24.04"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg["max_attempts"] = 3

	m := New(nil)
	resp := m.Initialize(context.Background(), cfg)

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, int32(3), calls.Load())
}
