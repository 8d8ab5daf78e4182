package dto

import (
	"github.com/openacademy/openacademy/internal/app/models"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// CreateSessionRequest represents session creation data. Dates use the
// YYYY-MM-DD format. Duration is in days; a session may instead be sized by
// endDate or hours, which set the duration through their inverse rules.
type CreateSessionRequest struct {
	Name         string   `json:"name" binding:"required"`
	CourseID     int64    `json:"courseId" binding:"required,gt=0"`
	StartDate    *string  `json:"startDate"`
	Duration     *float64 `json:"duration"`
	EndDate      *string  `json:"endDate"`
	Hours        *float64 `json:"hours"`
	Seats        *int     `json:"seats"`
	Active       *bool    `json:"active"`
	Color        *int     `json:"color"`
	InstructorID *int64   `json:"instructorId" binding:"omitempty,gt=0"`
	AttendeeIDs  []int64  `json:"attendeeIds"`
}

// UpdateSessionRequest represents a partial session update. Nil fields are
// left unchanged; which derived fields were written decides whether the
// forward or the inverse rule of a compute pair runs.
type UpdateSessionRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1"`
	CourseID     *int64   `json:"courseId" binding:"omitempty,gt=0"`
	StartDate    *string  `json:"startDate"`
	Duration     *float64 `json:"duration"`
	EndDate      *string  `json:"endDate"`
	Hours        *float64 `json:"hours"`
	Seats        *int     `json:"seats"`
	Active       *bool    `json:"active"`
	Color        *int     `json:"color"`
	InstructorID *int64   `json:"instructorId" binding:"omitempty,gt=0"`
	AttendeeIDs  *[]int64 `json:"attendeeIds"`
}

// SessionCheckRequest carries the fields inspected by the advisory seat
// check, the onchange-style feedback an interactive form shows while editing.
type SessionCheckRequest struct {
	Seats       int     `json:"seats"`
	AttendeeIDs []int64 `json:"attendeeIds"`
}

// SessionCheckResponse lists advisory warnings for an interactive edit.
type SessionCheckResponse struct {
	Warnings []models.Warning `json:"warnings"`
}

// SessionResponse represents session information
type SessionResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	CourseID       int64             `json:"courseId"`
	StartDate      *string           `json:"startDate,omitempty"`
	EndDate        *string           `json:"endDate,omitempty"`
	Duration       float64           `json:"duration"`
	Hours          float64           `json:"hours"`
	Seats          int               `json:"seats"`
	TakenSeats     float64           `json:"takenSeats"`
	AttendeesCount int               `json:"attendeesCount"`
	Active         bool              `json:"active"`
	Color          int               `json:"color"`
	InstructorID   *int64            `json:"instructorId,omitempty"`
	AttendeeIDs    []int64           `json:"attendeeIds"`
	Course         *CourseResponse   `json:"course,omitempty"`
	Instructor     *PartnerResponse  `json:"instructor,omitempty"`
	Attendees      []PartnerResponse `json:"attendees,omitempty"`
}

// NewSessionResponse maps a session model to its response representation.
func NewSessionResponse(session *models.Session) SessionResponse {
	resp := SessionResponse{
		ID:             session.ID,
		Name:           session.Name,
		CourseID:       session.CourseID,
		Duration:       session.Duration,
		Hours:          session.Hours,
		Seats:          session.Seats,
		TakenSeats:     session.TakenSeats,
		AttendeesCount: session.AttendeesCount,
		Active:         session.Active,
		Color:          session.Color,
		InstructorID:   session.InstructorID,
		AttendeeIDs:    session.AttendeeIDs,
	}
	if resp.AttendeeIDs == nil {
		resp.AttendeeIDs = []int64{}
	}
	if session.StartDate != nil {
		start := session.StartDate.Format(dateLayout)
		resp.StartDate = &start
	}
	if session.EndDate != nil {
		end := session.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	if session.Course != nil {
		c := NewCourseResponse(session.Course)
		resp.Course = &c
	}
	if session.Instructor != nil {
		p := NewPartnerResponse(session.Instructor)
		resp.Instructor = &p
	}
	for _, attendee := range session.Attendees {
		resp.Attendees = append(resp.Attendees, NewPartnerResponse(attendee))
	}
	return resp
}

// SessionListResponse represents a page of sessions
type SessionListResponse struct {
	Sessions   []SessionResponse `json:"sessions"`
	Pagination PaginationInfo    `json:"pagination"`
}

// SessionWriteResponse is the envelope for a create or update: the written
// session plus any advisory warnings. Warnings never block the write.
type SessionWriteResponse struct {
	Session  SessionResponse  `json:"session"`
	Warnings []models.Warning `json:"warnings,omitempty"`
}
