package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSLABreached(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	high := Priority{ResolutionSLAHours: 8}
	open := Status{Name: "Open"}
	resolved := Status{Name: "Resolved", IsFinal: true}

	tests := []struct {
		name   string
		status Status
		now    time.Time
		want   bool
	}{
		{"within target", open, created.Add(7 * time.Hour), false},
		{"exactly at target", open, created.Add(8 * time.Hour), false},
		{"past target", open, created.Add(9 * time.Hour), true},
		{"final status never breaches", resolved, created.Add(100 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SLABreached(created, high, tt.status, tt.now))
		})
	}
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("user").Valid())
	assert.False(t, RoleUser.IsStaffOrAdmin())
	assert.True(t, RoleStaff.IsStaffOrAdmin())
	assert.True(t, RoleAdmin.IsStaffOrAdmin())
}

func TestStatusHasName(t *testing.T) {
	st := Status{Name: " In Progress "}
	assert.True(t, st.HasName("in progress"))
	assert.False(t, st.HasName("progress"))
}

func TestTicketCloneIsDeep(t *testing.T) {
	assignee := "bob"
	due := time.Now()
	original := Ticket{ID: "t1", AssigneeID: &assignee, DueBy: &due}

	clone := original.Clone()
	*clone.AssigneeID = "carol"
	*clone.DueBy = due.Add(time.Hour)

	assert.Equal(t, "bob", *original.AssigneeID)
	assert.True(t, original.DueBy.Equal(due))
	assert.Nil(t, clone.TeamID)
}

func TestPrincipalFromUser(t *testing.T) {
	dept := "it"
	p := PrincipalFromUser(&User{ID: "u1", Role: RoleStaff, DepartmentID: &dept})
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, RoleStaff, p.Role)
	assert.Equal(t, "it", *p.DepartmentID)
	assert.Nil(t, p.TeamID)
}
