package auth

import (
	"context"
	"errors"

	"github.com/planhub/planhub/pkg/user"
)

var (
	// ErrInvalidCredentials is returned when the auth service rejects the
	// supplied email/password pair or an already-taken registration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn is returned when no valid session token is available.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Session is an authenticated session issued by the external auth service.
type Session struct {
	Token string
	User  user.User
}

// Provider talks to the external auth service on behalf of this instance and
// caches the session token between restarts.
type Provider interface {
	Register(ctx context.Context, username, email, password string, role user.Role) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (user.User, error)
}
