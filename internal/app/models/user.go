package models

import "time"

// User represents a staff account. Users authenticate against the API and may
// be set as the responsible contact of a course.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	RoleType     RoleType  `json:"roleType" db:"role_type"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns the display name of the user.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
