package domain

import (
	"strings"
	"time"
)

// User is an account that can author tickets, comments and events.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last names.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Ref returns the public projection of the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

// Actor returns the user as an operation actor.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// UserRef is the id/name/email projection embedded in ticket views.
type UserRef struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Role      Role
}
