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
	"github.com/openacademy/openacademy/internal/pkg/validation"
)

// PartnerStore is the persistence surface the partner service depends on.
type PartnerStore interface {
	Create(ctx context.Context, partner *models.Partner, tagIDs []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Partner, error)
	List(ctx context.Context, instructorsOnly bool, offset uint64, limit int) ([]*models.Partner, error)
	Count(ctx context.Context, instructorsOnly bool) (int64, error)
	Update(ctx context.Context, partner *models.Partner, tagIDs *[]int64) error
	Delete(ctx context.Context, id int64) error
	CreateTag(ctx context.Context, tag *models.PartnerTag) (int64, error)
	ListTags(ctx context.Context) ([]*models.PartnerTag, error)
}

// AttendeeSessionLister lists the sessions a partner attends.
type AttendeeSessionLister interface {
	ListByAttendee(ctx context.Context, partnerID int64) ([]*models.Session, error)
}

// PartnerService handles partner and partner tag operations
type PartnerService struct {
	partners PartnerStore
	sessions AttendeeSessionLister
}

// NewPartnerService creates a new partner service instance
func NewPartnerService(partners PartnerStore, sessions AttendeeSessionLister) *PartnerService {
	return &PartnerService{
		partners: partners,
		sessions: sessions,
	}
}

func validatePartnerName(name string) error {
	ok := validation.NewStringValidation(strings.TrimSpace(name)).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength).
		Validate()
	if !ok {
		return apperrors.NewValidationError("The partner name is required")
	}
	return nil
}

func validatePartnerEmail(email *string) error {
	if email == nil || *email == "" {
		return nil
	}
	if !validation.IsValidEmail(*email) {
		return apperrors.NewValidationError("Invalid email address")
	}
	return nil
}

// CreatePartner creates a partner with its tag links.
func (s *PartnerService) CreatePartner(ctx context.Context, req dto.CreatePartnerRequest) (*models.Partner, error) {
	if err := validatePartnerName(req.Name); err != nil {
		return nil, err
	}
	if err := validatePartnerEmail(req.Email); err != nil {
		return nil, err
	}

	partner := &models.Partner{
		Name:       req.Name,
		Email:      req.Email,
		Instructor: req.Instructor,
	}

	if _, err := s.partners.Create(ctx, partner, req.TagIDs); err != nil {
		if errors.Is(err, repositories.ErrPartnerTagNotFound) {
			return nil, apperrors.ErrPartnerTagNotFound
		}
		return nil, err
	}

	return s.GetPartnerByID(ctx, partner.ID)
}

// GetPartnerByID retrieves a partner with its tags.
func (s *PartnerService) GetPartnerByID(ctx context.Context, id int64) (*models.Partner, error) {
	partner, err := s.partners.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrPartnerNotFound
		}
		return nil, fmt.Errorf("error retrieving partner: %w", err)
	}
	return partner, nil
}

// GetPartnerDetail retrieves a partner with the sessions it attends.
func (s *PartnerService) GetPartnerDetail(ctx context.Context, id int64) (*models.Partner, []*models.Session, error) {
	partner, err := s.GetPartnerByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := s.sessions.ListByAttendee(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving attended sessions: %w", err)
	}
	for _, session := range sessions {
		refreshDerived(session)
	}

	return partner, sessions, nil
}

// ListPartners retrieves a page of partners. With instructorsOnly set, the
// listing is restricted to partners eligible to instruct sessions.
func (s *PartnerService) ListPartners(ctx context.Context, instructorsOnly bool, offset uint64, limit int) ([]*models.Partner, int64, error) {
	partners, err := s.partners.List(ctx, instructorsOnly, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving partners: %w", err)
	}

	total, err := s.partners.Count(ctx, instructorsOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting partners: %w", err)
	}

	return partners, total, nil
}

// UpdatePartner applies a partial update to an existing partner. Tag links
// are only rewritten when the request carries a tag list.
func (s *PartnerService) UpdatePartner(ctx context.Context, id int64, req dto.UpdatePartnerRequest) (*models.Partner, error) {
	partner, err := s.GetPartnerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := validatePartnerName(*req.Name); err != nil {
			return nil, err
		}
		partner.Name = *req.Name
	}
	if req.Email != nil {
		if err := validatePartnerEmail(req.Email); err != nil {
			return nil, err
		}
		partner.Email = req.Email
	}
	if req.Instructor != nil {
		partner.Instructor = *req.Instructor
	}

	if err := s.partners.Update(ctx, partner, req.TagIDs); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrPartnerNotFound
		}
		if errors.Is(err, repositories.ErrPartnerTagNotFound) {
			return nil, apperrors.ErrPartnerTagNotFound
		}
		return nil, err
	}

	return s.GetPartnerByID(ctx, id)
}

// DeletePartner deletes a partner.
func (s *PartnerService) DeletePartner(ctx context.Context, id int64) error {
	err := s.partners.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ErrPartnerNotFound
		}
		return fmt.Errorf("error deleting partner: %w", err)
	}
	return nil
}

// CreateTag creates a partner tag.
func (s *PartnerService) CreateTag(ctx context.Context, req dto.PartnerTagRequest) (*models.PartnerTag, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("The tag name is required")
	}

	tag := &models.PartnerTag{Name: req.Name}
	if _, err := s.partners.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags retrieves all partner tags.
func (s *PartnerService) ListTags(ctx context.Context) ([]*models.PartnerTag, error) {
	tags, err := s.partners.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving partner tags: %w", err)
	}
	return tags, nil
}
