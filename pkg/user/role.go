package user

// Role is the global permission level of a user. The hierarchy is strictly
// ordered: admin > organizer > attendee. A higher role satisfies any
// requirement of a lower one.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

var roleLevels = map[Role]int{
	RoleAttendee:  1,
	RoleOrganizer: 2,
	RoleAdmin:     3,
}

// Level returns the numeric rank of the role, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// HasPermission reports whether the user's role satisfies the required role.
// There are no identity-based exceptions: the decision is a pure function of
// the role hierarchy, and an absent (zero) user is always denied.
func HasPermission(u User, required Role) bool {
	if u.IsZero() {
		return false
	}
	return u.Role.Level() >= required.Level()
}
