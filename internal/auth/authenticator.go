package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/magma-studio/atelier/internal/config"
)

// Roles the dashboard knows about.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleAuthor = "author"
)

// User is the logged-in operator's identity, stored in the session for
// the lifetime of the login. Absence of a User means logged out.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// ErrInvalidCredentials is returned for any failed credential check. The
// caller surfaces it inline on the login form; it never aborts a request.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator verifies a credential pair and returns the operator it
// identifies. Implementations must not distinguish between a wrong
// username and a wrong password.
type Authenticator interface {
	Authenticate(username, password string) (*User, error)
}

// StaticAuthenticator checks credentials against a single configured
// pair. It is the default for a single-operator deployment; the literals
// live in configuration, never in code.
type StaticAuthenticator struct {
	username string
	password string
	role     string
}

// NewStaticAuthenticator builds an authenticator from the admin config
// block. Missing credentials are a configuration error, not an open door.
func NewStaticAuthenticator(cfg config.AdminConfig) (*StaticAuthenticator, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("admin credentials are not configured")
	}
	role := cfg.Role
	if role == "" {
		role = RoleAdmin
	}
	switch role {
	case RoleAdmin, RoleEditor, RoleAuthor:
	default:
		return nil, fmt.Errorf("unknown admin role %q", role)
	}
	return &StaticAuthenticator{username: cfg.Username, password: cfg.Password, role: role}, nil
}

// Authenticate performs a constant-time comparison of both fields.
func (a *StaticAuthenticator) Authenticate(username, password string) (*User, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &User{
		Username: username,
		Role:     a.role,
		Avatar:   "https://ui-avatars.com/api/?name=" + username,
	}, nil
}
