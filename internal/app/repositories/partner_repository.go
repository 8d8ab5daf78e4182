package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
	"github.com/openacademy/openacademy/internal/pkg/dberrors"
	"github.com/openacademy/openacademy/internal/pkg/logger"
	"github.com/openacademy/openacademy/internal/pkg/validation"
)

// Partner error types
var (
	// ErrPartnerNotFound is returned when a partner is not found.
	ErrPartnerNotFound = ErrNotFound
	// ErrPartnerTagNotFound is returned when a referenced tag does not exist.
	ErrPartnerTagNotFound = errors.New("partner tag not found")
)

const partnerTagNameUniqueConstraint = "partner_tags_name_unique"

// PartnerRepository handles partner and partner tag database operations
type PartnerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPartnerRepository creates a new PartnerRepository
func NewPartnerRepository(db *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a partner and its tag links in one transaction.
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner, tagIDs []int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Insert("partners").
		Columns("name", "email", "instructor").
		Values(partner.Name, partner.Email, partner.Instructor).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create partner query: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create partner query")
		return 0, fmt.Errorf("error creating partner: %w", err)
	}

	if err := r.replaceTags(ctx, tx, id, tagIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit create partner transaction: %w", err)
	}

	partner.ID = id
	return id, nil
}

// GetByID retrieves a partner with its tags.
func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*models.Partner, error) {
	sql, args, err := r.sb.Select("id", "name", "email", "instructor").
		From("partners").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get partner query: %w", err)
	}

	partner := &models.Partner{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&partner.ID, &partner.Name, &partner.Email, &partner.Instructor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		logger.Error().Err(err).Int64("partnerID", id).Msg("Error scanning partner row")
		return nil, fmt.Errorf("error getting partner by ID: %w", err)
	}

	tags, err := r.tagsForPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	partner.Tags = tags

	return partner, nil
}

// List retrieves a page of partners ordered by name. When instructorsOnly is
// set, the listing is restricted to partners eligible to instruct: flagged as
// instructor or tagged with a teacher tag.
func (r *PartnerRepository) List(ctx context.Context, instructorsOnly bool, offset uint64, limit int) ([]*models.Partner, error) {
	builder := r.sb.Select("id", "name", "email", "instructor").
		From("partners").
		OrderBy("name ASC").
		Offset(offset).
		Limit(uint64(limit))
	if instructorsOnly {
		builder = builder.Where(r.instructorCondition())
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list partners query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list partners query")
		return nil, fmt.Errorf("error querying partners: %w", err)
	}
	defer rows.Close()

	partners := []*models.Partner{}
	for rows.Next() {
		partner := &models.Partner{}
		if err := rows.Scan(&partner.ID, &partner.Name, &partner.Email, &partner.Instructor); err != nil {
			return nil, fmt.Errorf("error scanning partner row: %w", err)
		}
		partners = append(partners, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner rows: %w", err)
	}

	return partners, nil
}

// Count returns the number of partners, optionally restricted to eligible
// instructors.
func (r *PartnerRepository) Count(ctx context.Context, instructorsOnly bool) (int64, error) {
	builder := r.sb.Select("COUNT(*)").From("partners")
	if instructorsOnly {
		builder = builder.Where(r.instructorCondition())
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count partners query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting partners: %w", err)
	}
	return count, nil
}

// instructorCondition encodes the instructor domain: flagged as instructor OR
// carrying a tag whose name contains the teacher keyword, case-insensitively.
func (r *PartnerRepository) instructorCondition() squirrel.Sqlizer {
	return squirrel.Expr(
		`(instructor OR EXISTS (
			SELECT 1 FROM partner_tag_rel rel
			JOIN partner_tags t ON t.id = rel.tag_id
			WHERE rel.partner_id = partners.id AND t.name ILIKE ?
		))`,
		"%"+validation.TeacherTagKeyword+"%",
	)
}

// IsEligibleInstructor reports whether the partner may instruct sessions.
func (r *PartnerRepository) IsEligibleInstructor(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("partners").
		Where(squirrel.Eq{"id": id}).
		Where(r.instructorCondition()).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build instructor eligibility query: %w", err)
	}

	var eligible bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&eligible)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking instructor eligibility: %w", err)
	}

	return eligible, nil
}

// MissingIDs returns which of the given partner IDs do not exist.
func (r *PartnerRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := r.sb.Select("id").
		From("partners").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner existence query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying partner existence: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning partner ID: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner IDs: %w", err)
	}

	missing := []int64{}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Update rewrites a partner row and, when tagIDs is non-nil, its tag links.
func (r *PartnerRepository) Update(ctx context.Context, partner *models.Partner, tagIDs *[]int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := r.sb.Update("partners").
		SetMap(map[string]interface{}{
			"name":       partner.Name,
			"email":      partner.Email,
			"instructor": partner.Instructor,
		}).
		Where(squirrel.Eq{"id": partner.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update partner query: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("partnerID", partner.ID).Msg("Error executing update partner query")
		return fmt.Errorf("error updating partner: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}

	if tagIDs != nil {
		if err := r.replaceTags(ctx, tx, partner.ID, *tagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit update partner transaction: %w", err)
	}

	return nil
}

// Delete deletes a partner by ID. Roster and tag links are removed by their
// cascade rules; sessions instructed by the partner keep running with the
// instructor reference cleared.
func (r *PartnerRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("partners").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete partner query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("partnerID", id).Msg("Error executing delete partner query")
		return fmt.Errorf("error deleting partner: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}

	return nil
}

// CreateTag inserts a partner tag.
func (r *PartnerRepository) CreateTag(ctx context.Context, tag *models.PartnerTag) (int64, error) {
	sql, args, err := r.sb.Insert("partner_tags").
		Columns("name").
		Values(tag.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create tag query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, partnerTagNameUniqueConstraint) {
			return 0, apperrors.ErrPartnerTagExists
		}
		return 0, fmt.Errorf("error creating partner tag: %w", err)
	}

	tag.ID = id
	return id, nil
}

// ListTags retrieves all partner tags ordered by name.
func (r *PartnerRepository) ListTags(ctx context.Context) ([]*models.PartnerTag, error) {
	sql, args, err := r.sb.Select("id", "name").
		From("partner_tags").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tags query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying partner tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.PartnerTag{}
	for rows.Next() {
		tag := &models.PartnerTag{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("error scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// tagsForPartner retrieves the tags linked to one partner.
func (r *PartnerRepository) tagsForPartner(ctx context.Context, partnerID int64) ([]*models.PartnerTag, error) {
	sql, args, err := r.sb.Select("t.id", "t.name").
		From("partner_tags t").
		Join("partner_tag_rel rel ON rel.tag_id = t.id").
		Where(squirrel.Eq{"rel.partner_id": partnerID}).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner tags query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying partner tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.PartnerTag{}
	for rows.Next() {
		tag := &models.PartnerTag{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("error scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// replaceTags rewrites the tag links for a partner. Referencing a missing tag
// fails the surrounding transaction with ErrPartnerTagNotFound.
func (r *PartnerRepository) replaceTags(ctx context.Context, tx pgx.Tx, partnerID int64, tagIDs []int64) error {
	delSQL, delArgs, err := r.sb.Delete("partner_tag_rel").
		Where(squirrel.Eq{"partner_id": partnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete tag links query: %w", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("error clearing partner tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	builder := r.sb.Insert("partner_tag_rel").Columns("partner_id", "tag_id")
	for _, tagID := range tagIDs {
		builder = builder.Values(partnerID, tagID)
	}
	insSQL, insArgs, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert tag links query: %w", err)
	}
	if _, err := tx.Exec(ctx, insSQL, insArgs...); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return ErrPartnerTagNotFound
		}
		return fmt.Errorf("error writing partner tags: %w", err)
	}

	return nil
}
