package monday

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/httpclient"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// nativeUser is the monday.com GraphQL user representation.
type nativeUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
	IsGuest   bool   `json:"is_guest"`
	IsPending bool   `json:"is_pending"`
	IsAdmin   bool   `json:"is_admin"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Client wraps the monday.com GraphQL API.
type Client struct {
	http  *httpclient.Client
	retry *errors.Executor
}

// NewClient builds a monday.com API client from a validated platform config.
func NewClient(cfg platform.Config, log logger.Logger) *Client {
	baseURL := cfg.GetString("base_url")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiVersion := cfg.GetString("api_version")
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	timeout, ok := cfg.GetDuration("timeout")
	if !ok {
		timeout = defaultTimeout
	}
	attempts, _ := cfg.GetInt("max_attempts")
	delay, _ := cfg.GetDuration("retry_delay")

	// GraphQL errors arrive with HTTP 200, invisible to the transport's
	// status-based retry. The transport runs single-shot and the full
	// retry budget is applied around the whole exchange in query instead.
	return &Client{
		http: httpclient.New(httpclient.Options{
			BaseURL:     baseURL,
			AuthHeader:  "Authorization",
			AuthValue:   cfg.GetString("api_token"),
			Headers:     map[string]string{"API-Version": apiVersion},
			Timeout:     timeout,
			MaxAttempts: 1,
			RetryDelay:  delay,
			Logger:      log,
		}),
		retry: errors.NewExecutor(errors.NewFixedDelayPolicy(delay, attempts), log),
	}
}

// query executes one GraphQL request and decodes the data payload into
// out. Transient failures are retried here, after classification, so
// that GraphQL-level rate limits get the same bounded retry as HTTP 429s.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	return c.retry.Execute(ctx, func() error {
		var resp graphQLResponse
		if err := c.http.Post(ctx, "", graphQLRequest{Query: query, Variables: variables}, &resp); err != nil {
			return err
		}
		if len(resp.Errors) > 0 {
			return classifyGraphQLError(resp.Errors[0])
		}
		if out != nil && len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return errors.Wrap(err, errors.ErrUnclassified, "decode graphql data")
			}
		}
		return nil
	})
}

// classifyGraphQLError maps monday.com GraphQL error codes onto the
// provisioning taxonomy. GraphQL errors arrive with HTTP 200, so status
// based classification never sees them.
func classifyGraphQLError(gqlErr graphQLError) *errors.ProvisionError {
	code := strings.ToUpper(gqlErr.Extensions.Code)
	message := gqlErr.Message
	switch {
	case code == "USER_UNAUTHORIZED" || strings.Contains(strings.ToLower(message), "not authenticated"):
		return errors.New(errors.ErrUnauthorized, message)
	case code == "COMPLEXITY_BUDGET_EXHAUSTED" || code == "RATE_LIMIT_EXCEEDED":
		return errors.New(errors.ErrRateLimited, message)
	case code == "RESOURCE_NOT_FOUND":
		return errors.New(errors.ErrNotFound, message)
	case code == "INVALID_ARGUMENT_EXCEPTION" || code == "INVALID_USER_ID_EXCEPTION":
		return errors.New(errors.ErrValidationFailed, message)
	default:
		return errors.New(errors.ErrUnclassified, message)
	}
}

// Ping verifies the API token by resolving the authenticated account.
func (c *Client) Ping(ctx context.Context) error {
	var data struct {
		Me *nativeUser `json:"me"`
	}
	if err := c.query(ctx, `query { me { id name email } }`, nil, &data); err != nil {
		return err
	}
	if data.Me == nil {
		return errors.New(errors.ErrUnauthorized, "api token did not resolve to an account")
	}
	return nil
}

// GetUser fetches one account member by id.
func (c *Client) GetUser(ctx context.Context, id string) (*nativeUser, error) {
	var data struct {
		Users []nativeUser `json:"users"`
	}
	query := `query ($ids: [ID!]) { users (ids: $ids) { id name email enabled is_guest is_pending is_admin } }`
	if err := c.query(ctx, query, map[string]any{"ids": []string{id}}, &data); err != nil {
		return nil, err
	}
	if len(data.Users) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "monday.com user %s not found", id)
	}
	return &data.Users[0], nil
}

// FindUserByEmail looks up an account member by email address.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*nativeUser, error) {
	var data struct {
		Users []nativeUser `json:"users"`
	}
	query := `query ($emails: [String!]) { users (emails: $emails) { id name email enabled is_guest is_pending is_admin } }`
	if err := c.query(ctx, query, map[string]any{"emails": []string{email}}, &data); err != nil {
		return nil, err
	}
	if len(data.Users) == 0 {
		return nil, nil
	}
	return &data.Users[0], nil
}

// ListUsers returns every account member.
func (c *Client) ListUsers(ctx context.Context) ([]nativeUser, error) {
	var data struct {
		Users []nativeUser `json:"users"`
	}
	query := `query { users (limit: 500) { id name email enabled is_guest is_pending is_admin } }`
	if err := c.query(ctx, query, nil, &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

// UpdateUserRole changes a member's base role, the only profile mutation
// the public API exposes.
func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (*nativeUser, error) {
	mutation := `mutation ($ids: [ID!]!, $role: BaseRoleName!) {
		update_users_role (user_ids: $ids, new_role: $role) {
			updated_users { id name email enabled is_guest is_pending is_admin }
		}
	}`
	var data struct {
		UpdateUsersRole struct {
			UpdatedUsers []nativeUser `json:"updated_users"`
		} `json:"update_users_role"`
	}
	vars := map[string]any{"ids": []string{id}, "role": role}
	if err := c.query(ctx, mutation, vars, &data); err != nil {
		return nil, err
	}
	if len(data.UpdateUsersRole.UpdatedUsers) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "monday.com user %s not found", id)
	}
	return &data.UpdateUsersRole.UpdatedUsers[0], nil
}

// DeactivateUser deactivates a member. monday.com offers no hard delete
// over the API.
func (c *Client) DeactivateUser(ctx context.Context, id string) error {
	mutation := `mutation ($ids: [ID!]!) {
		deactivate_users (user_ids: $ids) { deactivated_users { id } }
	}`
	var data struct {
		DeactivateUsers struct {
			DeactivatedUsers []struct {
				ID string `json:"id"`
			} `json:"deactivated_users"`
		} `json:"deactivate_users"`
	}
	if err := c.query(ctx, mutation, map[string]any{"ids": []string{id}}, &data); err != nil {
		return err
	}
	if len(data.DeactivateUsers.DeactivatedUsers) == 0 {
		return errors.Newf(errors.ErrNotFound, "monday.com user %s not found", id)
	}
	return nil
}

// normalizeUser maps a native monday.com user into the common representation.
func normalizeUser(u *nativeUser) *platform.User {
	status := platform.UserActive
	switch {
	case u.IsPending:
		status = platform.UserPending
	case !u.Enabled:
		status = platform.UserInactive
	}
	return &platform.User{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Email,
		DisplayName: u.Name,
		Status:      status,
		Metadata: map[string]any{
			"is_guest": u.IsGuest,
			"is_admin": u.IsAdmin,
		},
	}
}
