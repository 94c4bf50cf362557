// Package auth declares the authentication collaborator consumed by the
// surrounding application. The provisioning layer treats it as opaque:
// it never inspects tokens or sessions beyond the identifiers returned
// here.
package auth

import (
	"context"
	"time"
)

// Session identifies an authenticated principal.
type Session struct {
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignUpParams carries the fields needed to register a new account.
type SignUpParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OrgName  string `json:"org_name,omitempty"`
}

// Provider is the authentication collaborator contract.
type Provider interface {
	// SignUp registers a new account and returns its session.
	SignUp(ctx context.Context, params SignUpParams) (*Session, error)

	// SignIn authenticates an existing account.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut invalidates the session.
	SignOut(ctx context.Context, token string) error

	// CurrentSession resolves the session behind a token.
	CurrentSession(ctx context.Context, token string) (*Session, error)

	// UpdateCredentials changes the password for the session's account.
	UpdateCredentials(ctx context.Context, token, newPassword string) error
}
