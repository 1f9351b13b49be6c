package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole is the discriminator stored in users.role.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleTeacher UserRole = "Teacher"
	RoleStudent UserRole = "Student"
)

// Valid reports whether r is one of the three stored roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User is the common header shared by every account row.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Role         UserRole  `db:"role" json:"role"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AdminProfile holds the columns meaningful only for role Admin.
type AdminProfile struct {
	Position       string `json:"position"`
	OfficeLocation string `json:"office_location"`
	PhoneNumber    string `json:"phone_number"`
}

// TeacherProfile holds the columns meaningful only for role Teacher.
type TeacherProfile struct {
	TeacherCode   string     `json:"teacher_code"`
	Department    string     `json:"department"`
	Qualification string     `json:"qualification"`
	PhoneNumber   string     `json:"phone_number"`
	JoinDate      *time.Time `json:"join_date,omitempty"`
}

// StudentProfile holds the columns meaningful only for role Student.
type StudentProfile struct {
	StudentCode string     `json:"student_code"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     string     `json:"address"`
	PhoneNumber string     `json:"phone_number"`
	CurrentYear *int       `json:"current_year,omitempty"`
}

// Account is a user together with exactly one role payload. Role selects which payload is set.
// Offline accounts come from the fixed fallback table and never exist in the store.
type Account struct {
	User
	Admin   *AdminProfile   `json:"admin,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
	Student *StudentProfile `json:"student,omitempty"`
	Offline bool            `json:"offline,omitempty"`
}

// NewAdminAccount builds an Admin account.
func NewAdminAccount(u User, p AdminProfile) *Account {
	u.Role = RoleAdmin
	return &Account{User: u, Admin: &p}
}

// NewTeacherAccount builds a Teacher account.
func NewTeacherAccount(u User, p TeacherProfile) *Account {
	u.Role = RoleTeacher
	return &Account{User: u, Teacher: &p}
}

// NewStudentAccount builds a Student account.
func NewStudentAccount(u User, p StudentProfile) *Account {
	u.Role = RoleStudent
	return &Account{User: u, Student: &p}
}

// Validate checks that the role tag and the populated payload agree.
func (a *Account) Validate() error {
	set := 0
	for _, ok := range []bool{a.Admin != nil, a.Teacher != nil, a.Student != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("account %q must carry exactly one role payload, has %d", a.Username, set)
	}
	switch a.Role {
	case RoleAdmin:
		if a.Admin == nil {
			return fmt.Errorf("account %q: role Admin without admin payload", a.Username)
		}
	case RoleTeacher:
		if a.Teacher == nil {
			return fmt.Errorf("account %q: role Teacher without teacher payload", a.Username)
		}
	case RoleStudent:
		if a.Student == nil {
			return fmt.Errorf("account %q: role Student without student payload", a.Username)
		}
	default:
		return fmt.Errorf("account %q: unknown role %q", a.Username, a.Role)
	}
	return nil
}

// Credentials is the first-step lookup result used by login.
type Credentials struct {
	ID           int64    `db:"id"`
	Username     string   `db:"username"`
	PasswordHash string   `db:"password_hash"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
