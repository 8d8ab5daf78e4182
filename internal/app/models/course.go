package models

import "time"

// Course represents a training offering. A course owns zero or more sessions;
// deleting a course deletes its sessions (enforced by the session FK).
type Course struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Description   *string `json:"description,omitempty" db:"description"`
	ResponsibleID *int64  `json:"responsibleId,omitempty" db:"responsible_id"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Responsible *User      `json:"responsible,omitempty"`
	Sessions    []*Session `json:"sessions,omitempty"`
}
