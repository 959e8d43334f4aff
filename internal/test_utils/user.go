package test_utils

import (
	"context"

	"github.com/planhub/planhub/pkg/user"
)

// ContextWithRole returns a context carrying a test user with the given role.
func ContextWithRole(role user.Role) context.Context {
	return user.WithUser(context.Background(), user.User{
		Id:       "test-user-" + string(role),
		Username: "test_" + string(role),
		Email:    string(role) + "@example.com",
		Role:     role,
	})
}
