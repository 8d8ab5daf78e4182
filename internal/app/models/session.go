package models

import "time"

// Session represents one scheduled occurrence of a course: an instructor, a
// roster of attendees, a seat capacity and an inclusive date range.
//
// EndDate, Hours, TakenSeats and AttendeesCount are derived fields maintained
// by the compute package. EndDate and AttendeesCount are persisted; Hours and
// TakenSeats are recomputed on load. EndDate and Hours are also writable:
// writing either one updates Duration through its inverse rule.
type Session struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	StartDate    *time.Time `json:"startDate,omitempty" db:"start_date"`
	Duration     float64    `json:"duration" db:"duration"`
	Seats        int        `json:"seats" db:"seats"`
	Active       bool       `json:"active" db:"active"`
	Color        int        `json:"color" db:"color"`
	InstructorID *int64     `json:"instructorId,omitempty" db:"instructor_id"`
	CourseID     int64      `json:"courseId" db:"course_id"`

	EndDate        *time.Time `json:"endDate,omitempty" db:"end_date"`
	Hours          float64    `json:"hours"`
	TakenSeats     float64    `json:"takenSeats"`
	AttendeesCount int        `json:"attendeesCount" db:"attendees_count"`

	AttendeeIDs []int64 `json:"attendeeIds"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Course     *Course    `json:"course,omitempty"`
	Instructor *Partner   `json:"instructor,omitempty"`
	Attendees  []*Partner `json:"attendees,omitempty"`
}

// HasAttendee reports whether the partner is on the session roster.
func (s *Session) HasAttendee(partnerID int64) bool {
	for _, id := range s.AttendeeIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}
