package model

import (
	"time"
)

const (
	RoleUser    = "user"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one the platform assigns.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Role      string    `json:"role"`
	WinCount  int       `json:"winCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the owner-editable profile fields.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	PhotoURL *string `json:"photoURL,omitempty"`
}

// Actor is the verified caller of an operation. Role is empty when the caller
// has no user record.
type Actor struct {
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the actor may act on email's behalf.
func (a Actor) CanActFor(email string) bool {
	return a.Email == email || a.IsAdmin()
}
