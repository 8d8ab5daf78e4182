package models

// RoleType defines the staff account role
type RoleType string

const (
	// RoleManager has full CRUD access to courses, sessions and partners.
	RoleManager RoleType = "MANAGER"
	// RoleOfficer has read access and may edit session rosters.
	RoleOfficer RoleType = "OFFICER"
)

// Warning is advisory feedback attached to an interactive edit. Warnings
// inform the editor but never block the write.
type Warning struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
