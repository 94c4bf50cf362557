package truenas

import (
	"context"
	"fmt"

	"github.com/onboardhub/onboardhub/pkg/httpclient"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
)

// nativeUser is the TrueNAS middleware representation of a local user.
type nativeUser struct {
	ID       int    `json:"id"`
	UID      int    `json:"uid"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Builtin  bool   `json:"builtin"`
	Locked   bool   `json:"locked"`
	SMB      bool   `json:"smb"`
	Shell    string `json:"shell,omitempty"`
}

// createUserRequest is the POST /user payload.
type createUserRequest struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	GroupCreate bool   `json:"group_create"`
	SMB         bool   `json:"smb"`
	Shell       string `json:"shell"`
}

// systemInfo is the subset of GET /system/info used for connectivity checks.
type systemInfo struct {
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
}

// Client wraps the TrueNAS SCALE REST API v2.0.
type Client struct {
	http *httpclient.Client
}

// NewClient builds a TrueNAS API client from a validated platform config.
func NewClient(cfg platform.Config, log logger.Logger) *Client {
	timeout, ok := cfg.GetDuration("timeout")
	if !ok {
		timeout = defaultTimeout
	}
	attempts, _ := cfg.GetInt("max_attempts")
	delay, _ := cfg.GetDuration("retry_delay")

	return &Client{
		http: httpclient.New(httpclient.Options{
			BaseURL:     cfg.GetString("base_url") + apiPrefix,
			AuthHeader:  "Authorization",
			AuthValue:   "Bearer " + cfg.GetString("api_key"),
			Timeout:     timeout,
			MaxAttempts: attempts,
			RetryDelay:  delay,
			Logger:      log,
		}),
	}
}

// Ping verifies connectivity and credentials against the system info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var info systemInfo
	return c.http.Get(ctx, "/system/info", &info)
}

// CreateUser creates a local TrueNAS user with SMB access and a dedicated
// primary group.
func (c *Client) CreateUser(ctx context.Context, creds platform.Credentials) (*nativeUser, error) {
	fullName := creds.FirstName + " " + creds.LastName
	if creds.FirstName == "" && creds.LastName == "" {
		fullName = creds.Username
	}
	req := createUserRequest{
		Username:    creds.Username,
		FullName:    fullName,
		Email:       creds.Email,
		Password:    creds.Password,
		GroupCreate: true,
		SMB:         true,
		Shell:       "/usr/sbin/nologin",
	}

	// TrueNAS returns the numeric id of the created user.
	var id int
	if err := c.http.Post(ctx, "/user", req, &id); err != nil {
		return nil, err
	}
	return c.GetUser(ctx, id)
}

// GetUser fetches one user by database id.
func (c *Client) GetUser(ctx context.Context, id int) (*nativeUser, error) {
	var user nativeUser
	if err := c.http.Get(ctx, fmt.Sprintf("/user/id/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update to one user.
func (c *Client) UpdateUser(ctx context.Context, id int, updates map[string]any) (*nativeUser, error) {
	var result nativeUser
	if err := c.http.Put(ctx, fmt.Sprintf("/user/id/%d", id), updates, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteUser removes one user and its dedicated primary group.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.http.Do(ctx, "DELETE", fmt.Sprintf("/user/id/%d", id),
		map[string]any{"delete_group": true}, nil)
}

// ListUsers returns every local user known to the middleware, builtin
// system accounts included. Callers filter those out.
func (c *Client) ListUsers(ctx context.Context) ([]nativeUser, error) {
	var users []nativeUser
	if err := c.http.Get(ctx, "/user", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// normalizeUser maps a native TrueNAS user into the common representation.
func normalizeUser(u *nativeUser) *platform.User {
	status := platform.UserActive
	if u.Locked {
		status = platform.UserSuspended
	}
	return &platform.User{
		ID:          fmt.Sprintf("%d", u.ID),
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.FullName,
		Status:      status,
		Metadata: map[string]any{
			"uid":     u.UID,
			"builtin": u.Builtin,
			"smb":     u.SMB,
		},
	}
}
