package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountValidate(t *testing.T) {
	u := User{Username: "gv001"}

	assert.NoError(t, NewTeacherAccount(u, TeacherProfile{TeacherCode: "GV001"}).Validate())

	mismatched := NewTeacherAccount(u, TeacherProfile{})
	mismatched.Role = RoleStudent
	assert.Error(t, mismatched.Validate())

	twoPayloads := NewAdminAccount(u, AdminProfile{})
	twoPayloads.Student = &StudentProfile{}
	assert.Error(t, twoPayloads.Validate())

	unknown := &Account{User: User{Role: "Parent"}, Admin: &AdminProfile{}}
	assert.Error(t, unknown.Validate())
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("admin").Valid())
	assert.Equal(t, "An Nguyen", User{FirstName: "An", LastName: "Nguyen"}.FullName())
}

func TestAnnouncementVisibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	a := Announcement{TargetAudience: AudienceTeachers, ExpiryDate: &past}
	assert.True(t, a.Expired(now))
	assert.True(t, a.VisibleTo(AudienceTeachers))
	assert.False(t, a.VisibleTo(AudienceStudents))
	assert.True(t, a.VisibleTo(AudienceAll))

	assert.False(t, Announcement{}.Expired(now))
	assert.Equal(t, AudienceStudents, AudienceForRole(RoleStudent))
}
