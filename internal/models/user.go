package models

import (
	"time"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string // "admin" or "member", loaded via user_roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the editable profile fields attached to a user.
// A profile row is created (empty) at registration.
type Profile struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Website   string
	Bio       string
}

// UserAccount is the joined users + profiles + roles row returned by
// the user listing and detail endpoints.
type UserAccount struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Bio       string `json:"bio"`
	Role      string `json:"role_name"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)
