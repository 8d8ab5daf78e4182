package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openacademy/openacademy/internal/app/compute"
	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

// SessionStore is the persistence surface the session service depends on.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter repositories.SessionFilter, offset uint64, limit int) ([]*models.Session, error)
	Count(ctx context.Context, filter repositories.SessionFilter) (int64, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id int64) error
}

// PartnerDirectory resolves the partners referenced by a session.
type PartnerDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.Partner, error)
	IsEligibleInstructor(ctx context.Context, id int64) (bool, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// CourseGetter resolves the course a session belongs to.
type CourseGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// refreshDerived recomputes the non-persisted derived fields of a loaded
// session.
func refreshDerived(session *models.Session) {
	compute.RefreshLoaded(session)
}

// SessionService handles session operations: the derived-field write cycle,
// the blocking validation rules, and the advisory seat checks.
type SessionService struct {
	sessions SessionStore
	partners PartnerDirectory
	courses  CourseGetter
	graph    *compute.Graph
}

// NewSessionService creates a new session service instance
func NewSessionService(sessions SessionStore, partners PartnerDirectory, courses CourseGetter) *SessionService {
	return &SessionService{
		sessions: sessions,
		partners: partners,
		courses:  courses,
		graph:    compute.SessionGraph(),
	}
}

// sessionWrites captures which fields a caller wrote in this cycle. Nil means
// untouched. The distinction matters for the writable derived fields: a
// direct write to endDate or hours runs the inverse rule and suppresses the
// forward rule for the same cycle.
type sessionWrites struct {
	startDate *time.Time
	duration  *float64
	endDate   *time.Time
	hours     *float64
	seats     *int
	attendees *[]int64
}

// applyWrites assigns the written fields, runs inverse rules for directly
// written derived fields, and recomputes everything that depends on the
// changed set. Only one direction of a compute/inverse pair runs per cycle;
// when both a source field and its derived counterpart are written, the
// source field wins and the derived value is recomputed from it.
func (s *SessionService) applyWrites(session *models.Session, w sessionWrites) {
	changed := []compute.Field{}
	skip := []string{}

	if w.startDate != nil {
		start := helpers.TruncateToDate(*w.startDate)
		session.StartDate = &start
		changed = append(changed, compute.FieldStartDate)
	}
	if w.duration != nil {
		session.Duration = *w.duration
		changed = append(changed, compute.FieldDuration)
	}
	if w.seats != nil {
		session.Seats = *w.seats
		changed = append(changed, compute.FieldSeats)
	}
	if w.attendees != nil {
		session.AttendeeIDs = append([]int64{}, (*w.attendees)...)
		changed = append(changed, compute.FieldAttendees)
	}

	if w.endDate != nil && w.duration == nil && w.hours == nil {
		compute.SetEndDate(session, *w.endDate)
		changed = append(changed, compute.FieldDuration, compute.FieldEndDate)
		skip = append(skip, compute.UpdateEndDate)
	}
	if w.hours != nil && w.duration == nil {
		compute.SetHours(session, *w.hours)
		changed = append(changed, compute.FieldDuration, compute.FieldHours)
		skip = append(skip, compute.UpdateHours)
	}

	s.graph.Recompute(session, changed, skip...)
}

// validateSession enforces the blocking rules on a fully assembled session.
func (s *SessionService) validateSession(ctx context.Context, session *models.Session) error {
	if _, err := s.courses.GetByID(ctx, session.CourseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error checking course: %w", err)
	}

	if len(session.AttendeeIDs) > 0 {
		missing, err := s.partners.MissingIDs(ctx, session.AttendeeIDs)
		if err != nil {
			return fmt.Errorf("error checking attendees: %w", err)
		}
		if len(missing) > 0 {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("attendee partners not found: %v", missing))
		}
	}

	if session.InstructorID != nil {
		eligible, err := s.partners.IsEligibleInstructor(ctx, *session.InstructorID)
		if err != nil {
			return fmt.Errorf("error checking instructor eligibility: %w", err)
		}
		if !eligible {
			return &apperrors.CustomError{
				Err:     apperrors.ErrInstructorNotEligible,
				Message: "The instructor must be flagged as an instructor or tagged as a teacher",
			}
		}

		if session.HasAttendee(*session.InstructorID) {
			return &apperrors.CustomError{
				Err:     apperrors.ErrInstructorIsAttendee,
				Message: "A session's instructor can't be an attendee",
			}
		}
	}

	return nil
}

// VerifySeats runs the advisory seat checks. The returned warnings are
// surfaced to interactive editors and never block a write.
func VerifySeats(seats int, attendeeCount int) []models.Warning {
	warnings := []models.Warning{}
	if seats < 0 {
		warnings = append(warnings, models.Warning{
			Title:   "Incorrect 'seats' value",
			Message: "The number of available seats may not be negative",
		})
	}
	if seats < attendeeCount {
		warnings = append(warnings, models.Warning{
			Title:   "Too many attendees",
			Message: "Increase seats or remove excess attendees",
		})
	}
	return warnings
}

// CheckSeats is the onchange-style advisory check for interactive editing.
func (s *SessionService) CheckSeats(req dto.SessionCheckRequest) []models.Warning {
	return VerifySeats(req.Seats, len(req.AttendeeIDs))
}

func parseDateField(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := helpers.ParseDate(*value)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", field))
	}
	return &t, nil
}

// CreateSession creates a session, returning the created record and any
// advisory warnings.
func (s *SessionService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, []models.Warning, error) {
	startDate, err := parseDateField(req.StartDate, "startDate")
	if err != nil {
		return nil, nil, err
	}
	endDate, err := parseDateField(req.EndDate, "endDate")
	if err != nil {
		return nil, nil, err
	}

	session := &models.Session{
		Name:         req.Name,
		CourseID:     req.CourseID,
		Active:       true,
		InstructorID: req.InstructorID,
	}
	if req.Active != nil {
		session.Active = *req.Active
	}
	if req.Color != nil {
		session.Color = *req.Color
	}

	// Every field counts as written on create so the whole dependency
	// table runs. Start date defaults to today.
	if startDate == nil {
		today := helpers.Today()
		startDate = &today
	}
	attendees := req.AttendeeIDs
	if attendees == nil {
		attendees = []int64{}
	}
	seats := 0
	if req.Seats != nil {
		seats = *req.Seats
	}

	s.applyWrites(session, sessionWrites{
		startDate: startDate,
		duration:  req.Duration,
		endDate:   endDate,
		hours:     req.Hours,
		seats:     &seats,
		attendees: &attendees,
	})

	if err := s.validateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	warnings := VerifySeats(session.Seats, len(session.AttendeeIDs))

	if _, err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	refreshDerived(session)
	return session, warnings, nil
}

// UpdateSession applies a partial update, running the derived-field write
// cycle for the fields actually written.
func (s *SessionService) UpdateSession(ctx context.Context, id int64, req dto.UpdateSessionRequest) (*models.Session, []models.Warning, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("error retrieving session: %w", err)
	}

	startDate, err := parseDateField(req.StartDate, "startDate")
	if err != nil {
		return nil, nil, err
	}
	endDate, err := parseDateField(req.EndDate, "endDate")
	if err != nil {
		return nil, nil, err
	}

	if req.Name != nil {
		session.Name = *req.Name
	}
	if req.CourseID != nil {
		session.CourseID = *req.CourseID
	}
	if req.Active != nil {
		session.Active = *req.Active
	}
	if req.Color != nil {
		session.Color = *req.Color
	}
	if req.InstructorID != nil {
		session.InstructorID = req.InstructorID
	}

	s.applyWrites(session, sessionWrites{
		startDate: startDate,
		duration:  req.Duration,
		endDate:   endDate,
		hours:     req.Hours,
		seats:     req.Seats,
		attendees: req.AttendeeIDs,
	})

	if err := s.validateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	warnings := VerifySeats(session.Seats, len(session.AttendeeIDs))

	if err := s.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.ErrSessionNotFound
		}
		return nil, nil, err
	}

	refreshDerived(session)
	return session, warnings, nil
}

// UpdateAttendees replaces the session roster.
func (s *SessionService) UpdateAttendees(ctx context.Context, id int64, attendeeIDs []int64) (*models.Session, []models.Warning, error) {
	if attendeeIDs == nil {
		attendeeIDs = []int64{}
	}
	return s.UpdateSession(ctx, id, dto.UpdateSessionRequest{AttendeeIDs: &attendeeIDs})
}

// GetSessionByID retrieves a session with its course, instructor and roster
// resolved.
func (s *SessionService) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	refreshDerived(session)

	if course, err := s.courses.GetByID(ctx, session.CourseID); err == nil {
		session.Course = course
	}
	if session.InstructorID != nil {
		if instructor, err := s.partners.GetByID(ctx, *session.InstructorID); err == nil {
			session.Instructor = instructor
		}
	}
	for _, attendeeID := range session.AttendeeIDs {
		if attendee, err := s.partners.GetByID(ctx, attendeeID); err == nil {
			session.Attendees = append(session.Attendees, attendee)
		}
	}

	return session, nil
}

// ListSessions retrieves a page of sessions matching the filter.
func (s *SessionService) ListSessions(ctx context.Context, filter repositories.SessionFilter, offset uint64, limit int) ([]*models.Session, int64, error) {
	sessions, err := s.sessions.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving sessions: %w", err)
	}
	for _, session := range sessions {
		refreshDerived(session)
	}

	total, err := s.sessions.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting sessions: %w", err)
	}

	return sessions, total, nil
}

// DeleteSession deletes a session.
func (s *SessionService) DeleteSession(ctx context.Context, id int64) error {
	err := s.sessions.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrSessionNotFound
		}
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}
