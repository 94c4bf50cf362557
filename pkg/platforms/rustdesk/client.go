package rustdesk

import (
	"context"
	"fmt"
	"net/url"

	"github.com/onboardhub/onboardhub/pkg/httpclient"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// Native RustDesk console user status values.
const (
	statusDisabled     = 0
	statusNormal       = 1
	statusUnregistered = -1
)

// nativeUser is the RustDesk console representation of an account.
type nativeUser struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Note      string `json:"note,omitempty"`
	Status    int    `json:"status"`
	GroupName string `json:"grp"`
	IsAdmin   bool   `json:"is_admin"`
}

type userListResponse struct {
	Total int          `json:"total"`
	Data  []nativeUser `json:"data"`
}

type createUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm-password"`
	GroupName       string `json:"group_name"`
	IsAdmin         bool   `json:"is_admin"`
}

type versionResponse struct {
	Version string `json:"version"`
}

// Client wraps the RustDesk Server Pro console HTTP API.
type Client struct {
	http      *httpclient.Client
	groupName string
}

// NewClient builds a RustDesk API client from a validated platform config.
func NewClient(cfg platform.Config, log logger.Logger) *Client {
	timeout, ok := cfg.GetDuration("timeout")
	if !ok {
		timeout = defaultTimeout
	}
	attempts, _ := cfg.GetInt("max_attempts")
	delay, _ := cfg.GetDuration("retry_delay")
	groupName := cfg.GetString("group_name")
	if groupName == "" {
		groupName = "freelancers"
	}

	return &Client{
		groupName: groupName,
		http: httpclient.New(httpclient.Options{
			BaseURL:     cfg.GetString("base_url") + "/api",
			AuthHeader:  "Authorization",
			AuthValue:   "Bearer " + cfg.GetString("api_token"),
			Timeout:     timeout,
			MaxAttempts: attempts,
			RetryDelay:  delay,
			Logger:      log,
		}),
	}
}

// Ping verifies connectivity against the console version endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var v versionResponse
	return c.http.Get(ctx, "/version", &v)
}

// CreateUser creates a console account in the configured device group.
func (c *Client) CreateUser(ctx context.Context, creds platform.Credentials) (*nativeUser, error) {
	req := createUserRequest{
		Name:            creds.Username,
		Email:           creds.Email,
		Password:        creds.Password,
		ConfirmPassword: creds.Password,
		GroupName:       c.groupName,
		IsAdmin:         false,
	}
	var user nativeUser
	if err := c.http.Post(ctx, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches one console account by guid.
func (c *Client) GetUser(ctx context.Context, guid string) (*nativeUser, error) {
	var user nativeUser
	if err := c.http.Get(ctx, "/users/"+url.PathEscape(guid), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to one console account.
func (c *Client) UpdateUser(ctx context.Context, guid string, updates map[string]any) (*nativeUser, error) {
	var user nativeUser
	if err := c.http.Put(ctx, "/users/"+url.PathEscape(guid), updates, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes one console account.
func (c *Client) DeleteUser(ctx context.Context, guid string) error {
	return c.http.Delete(ctx, "/users/"+url.PathEscape(guid), nil)
}

// ListUsers returns all console accounts, paging through the console API.
func (c *Client) ListUsers(ctx context.Context) ([]nativeUser, error) {
	const pageSize = 100
	var all []nativeUser
	for page := 1; ; page++ {
		var resp userListResponse
		path := fmt.Sprintf("/users?current=%d&pageSize=%d", page, pageSize)
		if err := c.http.Get(ctx, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)
		if len(all) >= resp.Total || len(resp.Data) == 0 {
			break
		}
	}
	return all, nil
}

// normalizeUser maps a native RustDesk account into the common representation.
func normalizeUser(u *nativeUser) *platform.User {
	var status platform.UserStatus
	switch u.Status {
	case statusNormal:
		status = platform.UserActive
	case statusDisabled:
		status = platform.UserSuspended
	case statusUnregistered:
		status = platform.UserPending
	default:
		status = platform.UserInactive
	}
	return &platform.User{
		ID:          u.GUID,
		Email:       u.Email,
		Username:    u.Name,
		DisplayName: u.Name,
		Status:      status,
		Metadata: map[string]any{
			"group":    u.GroupName,
			"is_admin": u.IsAdmin,
		},
	}
}
