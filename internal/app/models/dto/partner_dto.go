package dto

import (
	"github.com/openacademy/openacademy/internal/app/models"
)

// CreatePartnerRequest represents partner creation data
type CreatePartnerRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Instructor bool    `json:"instructor"`
	TagIDs     []int64 `json:"tagIds"`
}

// UpdatePartnerRequest represents a partial partner update
type UpdatePartnerRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=1"`
	Email      *string  `json:"email" binding:"omitempty,email"`
	Instructor *bool    `json:"instructor"`
	TagIDs     *[]int64 `json:"tagIds"`
}

// PartnerTagRequest represents tag creation data
type PartnerTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// PartnerTagResponse represents a partner tag
type PartnerTagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PartnerResponse represents partner information
type PartnerResponse struct {
	ID         int64                `json:"id"`
	Name       string               `json:"name"`
	Email      *string              `json:"email,omitempty"`
	Instructor bool                 `json:"instructor"`
	Tags       []PartnerTagResponse `json:"tags,omitempty"`
}

// NewPartnerResponse maps a partner model to its response representation.
func NewPartnerResponse(partner *models.Partner) PartnerResponse {
	resp := PartnerResponse{
		ID:         partner.ID,
		Name:       partner.Name,
		Email:      partner.Email,
		Instructor: partner.Instructor,
	}
	for _, tag := range partner.Tags {
		resp.Tags = append(resp.Tags, PartnerTagResponse{ID: tag.ID, Name: tag.Name})
	}
	return resp
}

// PartnerListResponse represents a page of partners
type PartnerListResponse struct {
	Partners   []PartnerResponse `json:"partners"`
	Pagination PaginationInfo    `json:"pagination"`
}

// PartnerDetailResponse is a partner plus the sessions it attends.
type PartnerDetailResponse struct {
	Partner  PartnerResponse   `json:"partner"`
	Sessions []SessionResponse `json:"sessions"`
}
