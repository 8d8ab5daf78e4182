package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/pkg/dberrors"
	"github.com/openacademy/openacademy/internal/pkg/logger"
)

// Session error types
var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = ErrNotFound
	// ErrSessionCourseMissing is returned when the referenced course does not exist.
	ErrSessionCourseMissing = errors.New("course for session not found")
)

const sessionCourseFKConstraint = "sessions_course_id_fkey"

var sessionColumns = []string{
	"id", "name", "start_date", "duration", "seats", "active", "color",
	"instructor_id", "course_id", "end_date", "attendees_count", "created_at",
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	CourseID        *int64
	InstructorID    *int64
	IncludeInactive bool
	From            *time.Time
	To              *time.Time
}

// CourseStats aggregates the sessions of one course.
type CourseStats struct {
	CourseID         int64
	CourseName       string
	SessionCount     int
	AttendeeTotal    int
	AverageOccupancy float64
}

// SessionRepository handles session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID, &s.Name, &s.StartDate, &s.Duration, &s.Seats, &s.Active, &s.Color,
		&s.InstructorID, &s.CourseID, &s.EndDate, &s.AttendeesCount, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a session and its roster in one transaction.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Insert("sessions").
		Columns("name", "start_date", "duration", "seats", "active", "color",
			"instructor_id", "course_id", "end_date", "attendees_count").
		Values(session.Name, session.StartDate, session.Duration, session.Seats,
			session.Active, session.Color, session.InstructorID, session.CourseID,
			session.EndDate, session.AttendeesCount).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create session query: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyError(err, sessionCourseFKConstraint) {
			return 0, ErrSessionCourseMissing
		}
		logger.Error().Err(err).Msg("Error executing create session query")
		return 0, fmt.Errorf("error creating session: %w", err)
	}

	if err := r.replaceAttendees(ctx, tx, id, session.AttendeeIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit create session transaction: %w", err)
	}

	session.ID = id
	return id, nil
}

// GetByID retrieves a session with its roster.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	sql, args, err := r.sb.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	session, err := scanSession(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error getting session by ID: %w", err)
	}

	if err := r.loadAttendees(ctx, []*models.Session{session}); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *SessionRepository) applyFilter(builder squirrel.SelectBuilder, filter SessionFilter) squirrel.SelectBuilder {
	if !filter.IncludeInactive {
		builder = builder.Where(squirrel.Eq{"active": true})
	}
	if filter.CourseID != nil {
		builder = builder.Where(squirrel.Eq{"course_id": *filter.CourseID})
	}
	if filter.InstructorID != nil {
		builder = builder.Where(squirrel.Eq{"instructor_id": *filter.InstructorID})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_date": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.LtOrEq{"start_date": *filter.To})
	}
	return builder
}

// List retrieves a page of sessions matching the filter, ordered by start date.
func (r *SessionRepository) List(ctx context.Context, filter SessionFilter, offset uint64, limit int) ([]*models.Session, error) {
	builder := r.applyFilter(r.sb.Select(sessionColumns...).From("sessions"), filter).
		OrderBy("start_date ASC", "id ASC").
		Offset(offset).
		Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list sessions query")
		return nil, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	if err := r.loadAttendees(ctx, sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Count returns the number of sessions matching the filter.
func (r *SessionRepository) Count(ctx context.Context, filter SessionFilter) (int64, error) {
	sql, args, err := r.applyFilter(r.sb.Select("COUNT(*)").From("sessions"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count sessions query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting sessions: %w", err)
	}
	return count, nil
}

// ListByCourse retrieves all sessions of a course, active or not.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Session, error) {
	return r.List(ctx, SessionFilter{CourseID: &courseID, IncludeInactive: true}, 0, 1000)
}

// ListByAttendee retrieves the sessions a partner attends.
func (r *SessionRepository) ListByAttendee(ctx context.Context, partnerID int64) ([]*models.Session, error) {
	sql, args, err := r.sb.Select(
		"s.id", "s.name", "s.start_date", "s.duration", "s.seats", "s.active", "s.color",
		"s.instructor_id", "s.course_id", "s.end_date", "s.attendees_count", "s.created_at").
		From("sessions s").
		Join("session_attendees sa ON sa.session_id = s.id").
		Where(squirrel.Eq{"sa.partner_id": partnerID}).
		OrderBy("s.start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sessions by attendee query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions by attendee: %w", err)
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	if err := r.loadAttendees(ctx, sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListUpcoming retrieves active sessions starting on or after the given date.
func (r *SessionRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Session, error) {
	return r.List(ctx, SessionFilter{From: &from}, 0, limit)
}

// Update rewrites a session row and its roster in one transaction.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Update("sessions").
		SetMap(map[string]interface{}{
			"name":            session.Name,
			"start_date":      session.StartDate,
			"duration":        session.Duration,
			"seats":           session.Seats,
			"active":          session.Active,
			"color":           session.Color,
			"instructor_id":   session.InstructorID,
			"course_id":       session.CourseID,
			"end_date":        session.EndDate,
			"attendees_count": session.AttendeesCount,
		}).
		Where(squirrel.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update session query: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, sessionCourseFKConstraint) {
			return ErrSessionCourseMissing
		}
		logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Error executing update session query")
		return fmt.Errorf("error updating session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	if err := r.replaceAttendees(ctx, tx, session.ID, session.AttendeeIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit update session transaction: %w", err)
	}

	return nil
}

// Delete deletes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error executing delete session query")
		return fmt.Errorf("error deleting session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// StatsByCourse aggregates session counts, roster totals and average seat
// occupancy per course. Sessions without seats contribute zero occupancy,
// mirroring the taken-seats computation.
func (r *SessionRepository) StatsByCourse(ctx context.Context) ([]CourseStats, error) {
	query := `
		SELECT c.id, c.name,
			COUNT(s.id),
			COALESCE(SUM(s.attendees_count), 0),
			COALESCE(AVG(CASE WHEN s.seats > 0 THEN 100.0 * s.attendees_count / s.seats ELSE 0 END), 0)
		FROM courses c
		LEFT JOIN sessions s ON s.course_id = c.id AND s.active
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying course stats: %w", err)
	}
	defer rows.Close()

	stats := []CourseStats{}
	for rows.Next() {
		var st CourseStats
		if err := rows.Scan(&st.CourseID, &st.CourseName, &st.SessionCount, &st.AttendeeTotal, &st.AverageOccupancy); err != nil {
			return nil, fmt.Errorf("error scanning course stats row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course stats rows: %w", err)
	}

	return stats, nil
}

// TotalAttendees counts roster entries across all active sessions.
func (r *SessionRepository) TotalAttendees(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM session_attendees sa
		JOIN sessions s ON s.id = sa.session_id
		WHERE s.active`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting attendees: %w", err)
	}
	return count, nil
}

// replaceAttendees rewrites the roster rows for a session.
func (r *SessionRepository) replaceAttendees(ctx context.Context, tx pgx.Tx, sessionID int64, attendeeIDs []int64) error {
	delSQL, delArgs, err := r.sb.Delete("session_attendees").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete attendees query: %w", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("error clearing session roster: %w", err)
	}

	if len(attendeeIDs) == 0 {
		return nil
	}

	builder := r.sb.Insert("session_attendees").Columns("session_id", "partner_id")
	for _, partnerID := range attendeeIDs {
		builder = builder.Values(sessionID, partnerID)
	}
	insSQL, insArgs, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert attendees query: %w", err)
	}
	if _, err := tx.Exec(ctx, insSQL, insArgs...); err != nil {
		return fmt.Errorf("error writing session roster: %w", err)
	}

	return nil
}

// loadAttendees fills AttendeeIDs for the given sessions with one query.
func (r *SessionRepository) loadAttendees(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(sessions))
	byID := make(map[int64]*models.Session, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
		byID[s.ID] = s
		s.AttendeeIDs = []int64{}
	}

	sql, args, err := r.sb.Select("session_id", "partner_id").
		From("session_attendees").
		Where(squirrel.Eq{"session_id": ids}).
		OrderBy("partner_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build load attendees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying session rosters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID, partnerID int64
		if err := rows.Scan(&sessionID, &partnerID); err != nil {
			return fmt.Errorf("error scanning roster row: %w", err)
		}
		if s, ok := byID[sessionID]; ok {
			s.AttendeeIDs = append(s.AttendeeIDs, partnerID)
		}
	}
	return rows.Err()
}
