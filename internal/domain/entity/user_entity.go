package entity

import (
	"time"
)

// UserRole is the authorization tier of a user account.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// UserStatus is the lifecycle state of a user account.
// DELETED marks a soft-deleted record; the row stays in place until a
// hard delete removes it.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusDeleted   UserStatus = "DELETED"
)

// User is the aggregate root for the user directory.
// Password holds a bcrypt hash and must never reach a response body;
// handlers serialize projected views instead.
type User struct {
	ID            string
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Role          UserRole
	Status        UserStatus
	Avatar        string
	EmailVerified bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Profile       *Profile
}
