package auth

import (
	"context"

	"github.com/planhub/planhub/pkg/user"
)

// StubProvider is an in-memory Provider for tests.
type StubProvider struct {
	Sessions map[string]Session // keyed by email
	Current  user.User
	Err      error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{Sessions: make(map[string]Session)}
}

func (s *StubProvider) Register(_ context.Context, username, email, _ string, role user.Role) (Session, error) {
	if s.Err != nil {
		return Session{}, s.Err
	}
	if _, exists := s.Sessions[email]; exists {
		return Session{}, ErrInvalidCredentials
	}
	session := Session{
		Token: "stub-token-" + username,
		User:  user.User{Id: "stub-" + username, Username: username, Email: email, Role: role},
	}
	s.Sessions[email] = session
	s.Current = session.User
	return session, nil
}

func (s *StubProvider) Login(_ context.Context, email, _ string) (Session, error) {
	if s.Err != nil {
		return Session{}, s.Err
	}
	session, ok := s.Sessions[email]
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	s.Current = session.User
	return session, nil
}

func (s *StubProvider) Logout(_ context.Context) error {
	if s.Err != nil {
		return s.Err
	}
	s.Current = user.User{}
	return nil
}

func (s *StubProvider) CurrentUser(_ context.Context) (user.User, error) {
	if s.Err != nil {
		return user.User{}, s.Err
	}
	if s.Current.IsZero() {
		return user.User{}, ErrNotLoggedIn
	}
	return s.Current, nil
}
