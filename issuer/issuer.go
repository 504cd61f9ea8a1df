// Package issuer obtains a bearer token and profile for a set of credentials,
// either from a built-in mock or from the remote auth API.
package issuer

import (
	"context"

	"github.com/jrsteele09/go-identity-dashboard/internal/config"
	"github.com/jrsteele09/go-identity-dashboard/users"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Name     string         `json:"name"`
	Role     users.RoleType `json:"role"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token string        `json:"token"`
	User  users.Profile `json:"user"`
}

// Issuer exchanges credentials for a session. Implementations never persist
// anything; storing the result is up to the caller.
type Issuer interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
}

// New returns the mock issuer when the mock API switch is on, otherwise a
// client for the configured remote API.
func New(cfg config.APIConfig) Issuer {
	if cfg.GetEnableMockAPI() {
		return NewMock()
	}
	return NewRemote(cfg.GetAPIBaseURL(), WithTimeout(cfg.GetAPITimeout()))
}
