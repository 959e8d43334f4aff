package user

// User is the identity issued by the auth service. PlanHub never stores users
// itself; the middleware reconstructs this struct from the session token on
// every request.
type User struct {
	Id       string
	Username string
	Email    string
	Role     Role
}

// IsZero reports whether no user is present (unauthenticated request).
func (u User) IsZero() bool {
	return u.Id == ""
}
