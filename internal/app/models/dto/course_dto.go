package dto

import (
	"github.com/openacademy/openacademy/internal/app/models"
)

// CreateCourseRequest represents course creation data
type CreateCourseRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   *string `json:"description"`
	ResponsibleID *int64  `json:"responsibleId" binding:"omitempty,gt=0"`
}

// UpdateCourseRequest represents course update data. Nil fields are left
// unchanged.
type UpdateCourseRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1"`
	Description   *string `json:"description"`
	ResponsibleID *int64  `json:"responsibleId" binding:"omitempty,gt=0"`
}

// CopyCourseRequest carries optional overrides for a course duplication.
// A name override is accepted but always replaced by the disambiguated
// "Copy of ..." title computed from existing course names.
type CopyCourseRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ResponsibleID *int64  `json:"responsibleId" binding:"omitempty,gt=0"`
}

// CourseResponse represents course information
type CourseResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	ResponsibleID *int64            `json:"responsibleId,omitempty"`
	Responsible   *UserResponse     `json:"responsible,omitempty"`
	Sessions      []SessionResponse `json:"sessions,omitempty"`
}

// NewCourseResponse maps a course model to its response representation.
func NewCourseResponse(course *models.Course) CourseResponse {
	resp := CourseResponse{
		ID:            course.ID,
		Name:          course.Name,
		Description:   course.Description,
		ResponsibleID: course.ResponsibleID,
	}
	if course.Responsible != nil {
		u := NewUserResponse(course.Responsible)
		resp.Responsible = &u
	}
	for _, session := range course.Sessions {
		resp.Sessions = append(resp.Sessions, NewSessionResponse(session))
	}
	return resp
}

// CourseListResponse represents a page of courses
type CourseListResponse struct {
	Courses    []CourseResponse `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}
