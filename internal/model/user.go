package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

type UserRole string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusPending  UserStatus = "PENDING"
	UserStatusDisabled UserStatus = "DISABLED"
)

const (
	UserRoleAdmin          UserRole = "admin"
	UserRoleDean           UserRole = "dean"
	UserRoleProfessor      UserRole = "professor"
	UserRoleStudent        UserRole = "student"
	UserRoleAdministration UserRole = "administration"
)

// roleDashboards is the single role-to-destination mapping consulted at the
// authentication boundary. The frontend used to repeat this switch in every
// page component.
var roleDashboards = map[UserRole]string{
	UserRoleAdmin:          "/admin/dashboard",
	UserRoleDean:           "/dean/dashboard",
	UserRoleAdministration: "/administration/dashboard",
	UserRoleProfessor:      "/professor/dashboard",
	UserRoleStudent:        "/student/dashboard",
}

func (r UserRole) Valid() bool {
	_, ok := roleDashboards[r]
	return ok
}

// Dashboard returns the post-login destination for the role, or /login for
// anything unknown.
func (r UserRole) Dashboard() string {
	if dest, ok := roleDashboards[r]; ok {
		return dest
	}
	return "/login"
}

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusPending, UserStatusDisabled:
		return true
	}
	return false
}

// User is the credential record enabling login, linked one-to-one to a
// Person. Status gates login: only ACTIVE accounts may authenticate.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         *string    `db:"name" json:"name,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	PersonID     *uuid.UUID `db:"personne_id" json:"personneId,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Person *Person `db:"-" json:"personne,omitempty"`
}
