package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
)

// copyPrefix is the literal prefix given to duplicated course titles.
const copyPrefix = "Copy of "

// CourseStore is the persistence surface the course service depends on.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.Course, error)
	CountAll(ctx context.Context) (int64, error)
	CountByNamePrefix(ctx context.Context, prefix string) (int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseSessionLister lists the sessions owned by a course.
type CourseSessionLister interface {
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Session, error)
}

// CourseService handles course operations
type CourseService struct {
	courses  CourseStore
	sessions CourseSessionLister
}

// NewCourseService creates a new course service instance
func NewCourseService(courses CourseStore, sessions CourseSessionLister) *CourseService {
	return &CourseService{
		courses:  courses,
		sessions: sessions,
	}
}

// validateCourse checks the service-level rules before hitting storage. The
// database constraints remain the final authority; these checks just produce
// friendlier errors for the common cases.
func (s *CourseService) validateCourse(course *models.Course) error {
	if strings.TrimSpace(course.Name) == "" {
		return apperrors.NewValidationError("The course title is required")
	}
	if course.Description != nil && course.Name == *course.Description {
		return apperrors.ErrCourseNameIsDescription
	}
	return nil
}

// CreateCourse creates a new course
func (s *CourseService) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(course); err != nil {
		return err
	}

	if _, err := s.courses.Create(ctx, course); err != nil {
		return err
	}
	return nil
}

// GetCourseByID retrieves a course together with its sessions.
func (s *CourseService) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	sessions, err := s.sessions.ListByCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course sessions: %w", err)
	}
	for _, session := range sessions {
		refreshDerived(session)
	}
	course.Sessions = sessions

	return course, nil
}

// ListCourses retrieves a page of courses and the total count.
func (s *CourseService) ListCourses(ctx context.Context, offset uint64, limit int) ([]*models.Course, int64, error) {
	courses, err := s.courses.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving courses: %w", err)
	}

	total, err := s.courses.CountAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	return courses, total, nil
}

// UpdateCourse applies a partial update to an existing course.
func (s *CourseService) UpdateCourse(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.ResponsibleID != nil {
		course.ResponsibleID = req.ResponsibleID
	}

	if err := s.validateCourse(course); err != nil {
		return nil, err
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}

	return course, nil
}

// DeleteCourse deletes a course. Its sessions are removed with it.
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	err := s.courses.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error deleting course: %w", err)
	}
	return nil
}

// CopyCourse duplicates a course under a disambiguated title. Existing copies
// are counted by a literal prefix match on the source title, so copying a
// copy keeps incrementing the counter instead of nesting prefixes. The
// computed title always wins over a name override.
func (s *CourseService) CopyCourse(ctx context.Context, id int64, overrides dto.CopyCourseRequest) (*models.Course, error) {
	source, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	copiedCount, err := s.courses.CountByNamePrefix(ctx, copyPrefix+source.Name)
	if err != nil {
		return nil, fmt.Errorf("error counting existing copies: %w", err)
	}

	newName := copyPrefix + source.Name
	if copiedCount > 0 {
		newName = fmt.Sprintf("%s%s (%d)", copyPrefix, source.Name, copiedCount)
	}

	duplicate := &models.Course{
		Name:          newName,
		Description:   source.Description,
		ResponsibleID: source.ResponsibleID,
	}
	if overrides.Description != nil {
		duplicate.Description = overrides.Description
	}
	if overrides.ResponsibleID != nil {
		duplicate.ResponsibleID = overrides.ResponsibleID
	}

	if err := s.validateCourse(duplicate); err != nil {
		return nil, err
	}

	if _, err := s.courses.Create(ctx, duplicate); err != nil {
		return nil, err
	}

	return duplicate, nil
}
