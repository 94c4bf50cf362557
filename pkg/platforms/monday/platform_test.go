package monday

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
		"api_token":   "test-token",
		"base_url":    baseURL,
		"retry_delay": time.Millisecond,
	}
}

// newMondayServer emulates the GraphQL queries and mutations the module
// issues. Members are keyed by id.
func newMondayServer(t *testing.T, members map[string]nativeUser) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if r.Header.Get("Authorization") != "test-token" {
			writeGraphQL(w, nil, &graphQLError{Message: "not authenticated"})
			return
		}

		switch {
		case strings.Contains(req.Query, "me {"):
			writeGraphQL(w, map[string]any{"me": map[string]any{
				"id": "me-1", "name": "Admin", "email": "admin@example.com",
			}}, nil)

		case strings.Contains(req.Query, "update_users_role"):
			ids := stringSlice(req.Variables["ids"])
			var updated []nativeUser
			for _, id := range ids {
				if u, ok := members[id]; ok {
					updated = append(updated, u)
				}
			}
			writeGraphQL(w, map[string]any{"update_users_role": map[string]any{
				"updated_users": updated,
			}}, nil)

		case strings.Contains(req.Query, "deactivate_users"):
			ids := stringSlice(req.Variables["ids"])
			var deactivated []map[string]string
			for _, id := range ids {
				if u, ok := members[id]; ok {
					u.Enabled = false
					members[id] = u
					deactivated = append(deactivated, map[string]string{"id": id})
				}
			}
			writeGraphQL(w, map[string]any{"deactivate_users": map[string]any{
				"deactivated_users": deactivated,
			}}, nil)

		case req.Variables["emails"] != nil:
			emails := stringSlice(req.Variables["emails"])
			var matched []nativeUser
			for _, u := range members {
				for _, email := range emails {
					if u.Email == email {
						matched = append(matched, u)
					}
				}
			}
			writeGraphQL(w, map[string]any{"users": matched}, nil)

		case req.Variables["ids"] != nil:
			ids := stringSlice(req.Variables["ids"])
			var matched []nativeUser
			for _, id := range ids {
				if u, ok := members[id]; ok {
					matched = append(matched, u)
				}
			}
			writeGraphQL(w, map[string]any{"users": matched}, nil)

		default: // plain list
			var all []nativeUser
			for _, u := range members {
				all = append(all, u)
			}
			writeGraphQL(w, map[string]any{"users": all}, nil)
		}
	}))
}

func writeGraphQL(w http.ResponseWriter, data map[string]any, gqlErr *graphQLError) {
	resp := map[string]any{}
	if data != nil {
		resp["data"] = data
	}
	if gqlErr != nil {
		resp["errors"] = []graphQLError{*gqlErr}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func stringSlice(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestMetadata(t *testing.T) {
	meta := Metadata()
	assert.Equal(t, PlatformID, meta.ID)
	assert.Equal(t, platform.CategoryCollaboration, meta.Category)
	assert.Equal(t, []string{"email"}, meta.RequiredCredentialFields)
}

func TestOperationsBeforeInitializeFailFast(t *testing.T) {
	m := New(nil)
	ctx := context.Background()

	assert.True(t, m.TestConnection(ctx).IsNotInitialized())
	assert.True(t, m.CreateUser(ctx, platform.Credentials{}).IsNotInitialized())
	assert.True(t, m.ListUsers(ctx).IsNotInitialized())
}

func TestInitializeRejectsBadToken(t *testing.T) {
	server := newMondayServer(t, map[string]nativeUser{})
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg["api_token"] = "wrong-token"

	m := New(nil)
	resp := m.Initialize(context.Background(), cfg)

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrUnauthorized, resp.Code)
	assert.False(t, m.Initialized())
}

// rateLimitedServer fails the first failures requests with a GraphQL
// level rate-limit error, then answers the authenticated-account query.
func rateLimitedServer(failures int32) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			gqlErr := graphQLError{Message: "complexity budget exhausted"}
			gqlErr.Extensions.Code = "COMPLEXITY_BUDGET_EXHAUSTED"
			writeGraphQL(w, nil, &gqlErr)
			return
		}
		writeGraphQL(w, map[string]any{"me": map[string]any{
			"id": "me-1", "name": "Admin", "email": "admin@example.com",
		}}, nil)
	}))
	return server, &calls
}

func TestGraphQLRateLimitIsRetried(t *testing.T) {
	// GraphQL errors ride on HTTP 200, so the retry has to happen after
	// classification rather than in the transport.
	server, calls := rateLimitedServer(2)
	defer server.Close()

	m := New(nil)
	resp := m.Initialize(context.Background(), testConfig(server.URL))

	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGraphQLRateLimitExhaustsBudget(t *testing.T) {
	server, calls := rateLimitedServer(100)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg["max_attempts"] = 2

	m := New(nil)
	resp := m.Initialize(context.Background(), cfg)

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrRateLimited, resp.Code)
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, m.Initialized())
}

func TestGraphQLAuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeGraphQL(w, nil, &graphQLError{Message: "not authenticated"})
	}))
	defer server.Close()

	m := New(nil)
	resp := m.Initialize(context.Background(), testConfig(server.URL))

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrUnauthorized, resp.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReinitializeValidationFailureLeavesUninitialized(t *testing.T) {
	server := newMondayServer(t, map[string]nativeUser{})
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

func TestCreateUserManualInvitationVariant(t *testing.T) {
	server := newMondayServer(t, map[string]nativeUser{})
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	resp := m.CreateUser(ctx, platform.Credentials{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "Person",
	})

	// Success variant, not an error: caller-side checks on Success alone
	// must treat this as created.
	require.True(t, resp.Success)
	assert.True(t, resp.Data.RequiresManualInvitation)
	assert.NotEmpty(t, resp.Data.InvitationInstructions)
	assert.Equal(t, platform.UserPending, resp.Data.Status)
	assert.Equal(t, "New Person", resp.Data.DisplayName)
}

func TestCreateUserReturnsExistingMember(t *testing.T) {
	members := map[string]nativeUser{
		"42": {ID: "42", Name: "Anna Nagy", Email: "anna@example.com", Enabled: true},
	}
	server := newMondayServer(t, members)
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	resp := m.CreateUser(ctx, platform.Credentials{Email: "anna@example.com"})

	require.True(t, resp.Success)
	assert.Equal(t, "42", resp.Data.ID)
	assert.False(t, resp.Data.RequiresManualInvitation)
	assert.Equal(t, platform.UserActive, resp.Data.Status)
}

func TestCreateUserMissingEmail(t *testing.T) {
	server := newMondayServer(t, map[string]nativeUser{})
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	resp := m.CreateUser(ctx, platform.Credentials{Username: "anna"})

	require.False(t, resp.Success)
	assert.Equal(t, errors.ErrValidationFailed, resp.Code)
	assert.ElementsMatch(t, []string{"email"}, resp.Details["missing_fields"])
}

func TestUpdateUserRoleOnly(t *testing.T) {
	members := map[string]nativeUser{
		"42": {ID: "42", Name: "Anna", Email: "anna@example.com", Enabled: true},
	}
	server := newMondayServer(t, members)
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	t.Run("Role update succeeds", func(t *testing.T) {
		resp := m.UpdateUser(ctx, "42", map[string]any{"role": "member"})
		require.True(t, resp.Success, resp.Error)
		assert.Equal(t, "42", resp.Data.ID)
	})

	t.Run("Other fields rejected before network I/O", func(t *testing.T) {
		resp := m.UpdateUser(ctx, "42", map[string]any{"name": "Anna B"})
		require.False(t, resp.Success)
		assert.Equal(t, errors.ErrValidationFailed, resp.Code)
		assert.Equal(t, []string{"role"}, resp.Details["supported_fields"])
	})

	t.Run("Mixed fields rejected", func(t *testing.T) {
		resp := m.UpdateUser(ctx, "42", map[string]any{"role": "member", "name": "Anna B"})
		assert.False(t, resp.Success)
	})
}

func TestDeleteUserDeactivates(t *testing.T) {
	members := map[string]nativeUser{
		"42": {ID: "42", Name: "Anna", Email: "anna@example.com", Enabled: true},
	}
	server := newMondayServer(t, members)
	defer server.Close()

	m := New(nil)
	ctx := context.Background()
	require.True(t, m.Initialize(ctx, testConfig(server.URL)).Success)

	resp := m.DeleteUser(ctx, "42")
	require.True(t, resp.Success)
	assert.False(t, members["42"].Enabled)

	missing := m.DeleteUser(ctx, "9999")
	require.False(t, missing.Success)
	assert.Equal(t, errors.ErrNotFound, missing.Code)
}

func TestNormalizeUserStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		user nativeUser
		want platform.UserStatus
	}{
		{"Enabled member", nativeUser{Enabled: true}, platform.UserActive},
		{"Pending invite", nativeUser{IsPending: true}, platform.UserPending},
		{"Deactivated member", nativeUser{Enabled: false}, platform.UserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeUser(&tt.user).Status)
		})
	}
}

func TestClassifyGraphQLError(t *testing.T) {
	tests := []struct {
		code string
		want errors.ErrorCode
	}{
		{"USER_UNAUTHORIZED", errors.ErrUnauthorized},
		{"COMPLEXITY_BUDGET_EXHAUSTED", errors.ErrRateLimited},
		{"RATE_LIMIT_EXCEEDED", errors.ErrRateLimited},
		{"RESOURCE_NOT_FOUND", errors.ErrNotFound},
		{"INVALID_ARGUMENT_EXCEPTION", errors.ErrValidationFailed},
		{"SOMETHING_ELSE", errors.ErrUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			gqlErr := graphQLError{Message: "boom"}
			gqlErr.Extensions.Code = tt.code
			assert.Equal(t, tt.want, classifyGraphQLError(gqlErr).Code)
		})
	}
}
