package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		required Role
		want     bool
	}{
		{"admin satisfies admin", User{Id: "u1", Role: RoleAdmin}, RoleAdmin, true},
		{"admin satisfies organizer", User{Id: "u1", Role: RoleAdmin}, RoleOrganizer, true},
		{"admin satisfies attendee", User{Id: "u1", Role: RoleAdmin}, RoleAttendee, true},
		{"organizer denied admin", User{Id: "u2", Role: RoleOrganizer}, RoleAdmin, false},
		{"organizer satisfies organizer", User{Id: "u2", Role: RoleOrganizer}, RoleOrganizer, true},
		{"organizer satisfies attendee", User{Id: "u2", Role: RoleOrganizer}, RoleAttendee, true},
		{"attendee denied organizer", User{Id: "u3", Role: RoleAttendee}, RoleOrganizer, false},
		{"attendee satisfies attendee", User{Id: "u3", Role: RoleAttendee}, RoleAttendee, true},
		{"absent user always denied", User{}, RoleAttendee, false},
		{"unknown role denied", User{Id: "u4", Role: Role("superuser")}, RoleAttendee, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.user, tt.required))
		})
	}
}

func TestRoleLevel(t *testing.T) {
	assert.Greater(t, RoleAdmin.Level(), RoleOrganizer.Level())
	assert.Greater(t, RoleOrganizer.Level(), RoleAttendee.Level())
	assert.Equal(t, 0, Role("").Level())
	assert.False(t, Role("owner").Valid())
	assert.True(t, RoleOrganizer.Valid())
}
