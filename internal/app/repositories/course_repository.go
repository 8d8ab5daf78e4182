package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/dberrors"
	"github.com/openacademy/openacademy/internal/pkg/logger"
)

// Course error types
var (
	// ErrCourseNotFound is returned when a course is not found.
	ErrCourseNotFound = ErrNotFound
)

// Constraint names declared in the migrations. The repository translates
// violations of these into domain errors.
const (
	courseNameUniqueConstraint = "courses_name_unique"
	courseNameDescConstraint   = "courses_name_description_check"
)

// CourseRepository handles course database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// translateCourseConstraint maps constraint violations on the courses table
// to their domain errors.
func translateCourseConstraint(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, courseNameUniqueConstraint):
		return apperrors.ErrCourseNameTaken
	case dberrors.IsCheckConstraintError(err, courseNameDescConstraint):
		return apperrors.ErrCourseNameIsDescription
	}
	return nil
}

// Create inserts a new course and returns its ID.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("name", "description", "responsible_id").
		Values(course.Name, course.Description, course.ResponsibleID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if domainErr := translateCourseConstraint(err); domainErr != nil {
			return 0, domainErr
		}
		logger.Error().Err(err).Msg("Error executing create course query")
		return 0, fmt.Errorf("error creating course: %w", err)
	}

	course.ID = id
	return id, nil
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "responsible_id", "created_at").
		From("courses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.Course{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&course.ID, &course.Name, &course.Description, &course.ResponsibleID, &course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	return course, nil
}

// GetByName retrieves a course by its exact name.
func (r *CourseRepository) GetByName(ctx context.Context, name string) (*models.Course, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "responsible_id", "created_at").
		From("courses").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course by name query: %w", err)
	}

	course := &models.Course{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&course.ID, &course.Name, &course.Description, &course.ResponsibleID, &course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course by name: %w", err)
	}

	return course, nil
}

// List retrieves a page of courses ordered by name.
func (r *CourseRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Course, error) {
	sql, args, err := r.sb.Select("id", "name", "description", "responsible_id", "created_at").
		From("courses").
		OrderBy("name ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(&course.ID, &course.Name, &course.Description, &course.ResponsibleID, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// CountAll returns the total number of courses.
func (r *CourseRepository) CountAll(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("courses").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return count, nil
}

// escapeLikePattern makes a literal string safe for use inside a LIKE
// pattern by escaping the wildcard characters and the escape character
// itself.
func escapeLikePattern(literal string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(literal)
}

// CountByNamePrefix counts courses whose name starts with the given literal
// prefix. The match is case-sensitive and wildcard-safe: any LIKE
// metacharacters inside the prefix are matched literally.
func (r *CourseRepository) CountByNamePrefix(ctx context.Context, prefix string) (int64, error) {
	pattern := escapeLikePattern(prefix) + "%"

	sql, args, err := r.sb.Select("COUNT(*)").
		From("courses").
		Where(squirrel.Expr(`name LIKE ? ESCAPE '\'`, pattern)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count by name prefix query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting courses by name prefix: %w", err)
	}
	return count, nil
}

// Update updates an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"name":           course.Name,
			"description":    course.Description,
			"responsible_id": course.ResponsibleID,
		}).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if domainErr := translateCourseConstraint(err); domainErr != nil {
			return domainErr
		}
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}

	return nil
}

// Delete deletes a course by ID. Sessions of the course are removed by the
// ON DELETE CASCADE rule on sessions.course_id.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}

	return nil
}
