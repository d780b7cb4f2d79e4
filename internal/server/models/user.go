// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. Username and Email are unique across all users.
type User struct {
	ID             int64
	Username       string
	Email          string
	FirstName      *string
	LastName       *string
	HashedPassword string
	Disabled       bool
	EmailVerified  bool
	CreatedAt      time.Time
}

// UserUpdate carries the fields of a profile update; nil means unchanged.
// HashedPassword is set by the service, never from client input.
type UserUpdate struct {
	Username       *string
	Email          *string
	FirstName      *string
	LastName       *string
	HashedPassword *string
	EmailVerified  *bool
}

// Apply copies the set fields of upd onto the user.
func (u *User) Apply(upd UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.HashedPassword != nil {
		u.HashedPassword = *upd.HashedPassword
	}
	if upd.EmailVerified != nil {
		u.EmailVerified = *upd.EmailVerified
	}
}
