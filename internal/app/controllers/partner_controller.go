package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/services"
	"github.com/openacademy/openacademy/internal/middleware"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

// PartnerController handles partner and partner tag operations
type PartnerController struct {
	partnerService *services.PartnerService
}

// NewPartnerController creates a new PartnerController
func NewPartnerController(partnerService *services.PartnerService) *PartnerController {
	return &PartnerController{
		partnerService: partnerService,
	}
}

// CreatePartner handles partner creation
// @Summary Create a new partner
// @Description Creates a partner with optional tag links
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePartnerRequest true "Partner information"
// @Success 201 {object} dto.APIResponse{data=dto.PartnerResponse} "Partner created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Referenced tag not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partners [post]
func (c *PartnerController) CreatePartner(ctx *gin.Context) {
	var req dto.CreatePartnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid partner data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	partner, err := c.partnerService.CreatePartner(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.NewPartnerResponse(partner),
		Timestamp: time.Now(),
	})
}

// GetPartnerByID retrieves a partner by ID
// @Summary Get partner by ID
// @Description Retrieves a partner with its tags and the sessions it attends
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Partner ID"
// @Success 200 {object} dto.APIResponse{data=dto.PartnerDetailResponse} "Partner retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid partner ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Partner not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partners/{id} [get]
func (c *PartnerController) GetPartnerByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "partner ID")
	if !ok {
		return
	}

	partner, sessions, err := c.partnerService.GetPartnerDetail(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.PartnerDetailResponse{
		Partner:  dto.NewPartnerResponse(partner),
		Sessions: []dto.SessionResponse{},
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, dto.NewSessionResponse(session))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// ListPartners retrieves a page of partners
// @Summary List partners
// @Description Retrieves a paginated list of partners. With instructorsOnly set, only partners eligible to instruct sessions are returned.
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param instructorsOnly query bool false "Restrict to eligible instructors" default(false)
// @Success 200 {object} dto.APIResponse{data=dto.PartnerListResponse} "Partners retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partners [get]
func (c *PartnerController) ListPartners(ctx *gin.Context) {
	page, size := helpers.GetPaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	instructorsOnly := ctx.Query("instructorsOnly") == "true"

	partners, total, err := c.partnerService.ListPartners(ctx, instructorsOnly, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.PartnerListResponse{
		Partners:   []dto.PartnerResponse{},
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	for _, partner := range partners {
		resp.Partners = append(resp.Partners, dto.NewPartnerResponse(partner))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// UpdatePartner updates an existing partner
// @Summary Update a partner
// @Description Applies a partial update. Tag links are rewritten only when tagIds is present.
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Partner ID"
// @Param request body dto.UpdatePartnerRequest true "Updated partner information"
// @Success 200 {object} dto.APIResponse{data=dto.PartnerResponse} "Partner updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Partner or tag not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partners/{id} [put]
func (c *PartnerController) UpdatePartner(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "partner ID")
	if !ok {
		return
	}

	var req dto.UpdatePartnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid partner data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	partner, err := c.partnerService.UpdatePartner(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.NewPartnerResponse(partner),
		Timestamp: time.Now(),
	})
}

// DeletePartner deletes a partner
// @Summary Delete a partner
// @Description Deletes a partner. Roster links are removed; sessions instructed by the partner keep running with the instructor cleared.
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Partner ID"
// @Success 204 "Partner deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid partner ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Partner not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partners/{id} [delete]
func (c *PartnerController) DeletePartner(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "partner ID")
	if !ok {
		return
	}

	if err := c.partnerService.DeletePartner(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CreateTag creates a partner tag
// @Summary Create a partner tag
// @Description Creates a new partner tag. Tag names are unique.
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PartnerTagRequest true "Tag information"
// @Success 201 {object} dto.APIResponse{data=dto.PartnerTagResponse} "Tag created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Tag name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partner-tags [post]
func (c *PartnerController) CreateTag(ctx *gin.Context) {
	var req dto.PartnerTagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid tag data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	tag, err := c.partnerService.CreateTag(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.PartnerTagResponse{ID: tag.ID, Name: tag.Name},
		Timestamp: time.Now(),
	})
}

// ListTags retrieves all partner tags
// @Summary List partner tags
// @Description Retrieves all partner tags ordered by name
// @Tags partners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PartnerTagResponse} "Tags retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /partner-tags [get]
func (c *PartnerController) ListTags(ctx *gin.Context) {
	tags, err := c.partnerService.ListTags(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := []dto.PartnerTagResponse{}
	for _, tag := range tags {
		resp = append(resp, dto.PartnerTagResponse{ID: tag.ID, Name: tag.Name})
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}
