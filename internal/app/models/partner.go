package models

// PartnerTag is a label attached to partners, e.g. "Teacher / Level 1".
// Tags whose name contains "teacher" mark the partner as eligible to
// instruct sessions.
type PartnerTag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Partner represents an external contact: an attendee, an instructor, or both.
type Partner struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Email      *string `json:"email,omitempty" db:"email"`
	Instructor bool    `json:"instructor" db:"instructor"`

	// Relations (populated when needed)
	Tags []*PartnerTag `json:"tags,omitempty"`
}
