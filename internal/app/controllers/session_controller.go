package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/repositories"
	"github.com/openacademy/openacademy/internal/app/services"
	"github.com/openacademy/openacademy/internal/middleware"
	"github.com/openacademy/openacademy/internal/pkg/helpers"
)

// SessionController handles session-related operations
type SessionController struct {
	sessionService *services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService *services.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// CreateSession handles session creation
// @Summary Create a new session
// @Description Creates a session. Derived fields are recomputed from the written fields; advisory warnings are returned alongside the record and never block the write.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Session information"
// @Success 201 {object} dto.APIResponse{data=dto.SessionWriteResponse} "Session created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or blocking validation failure"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Course or attendee not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	session, warnings, err := c.sessionService.CreateSession(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.SessionWriteResponse{
			Session:  dto.NewSessionResponse(session),
			Warnings: warnings,
		},
		Timestamp: time.Now(),
	})
}

// GetSessionByID retrieves a session by ID
// @Summary Get session by ID
// @Description Retrieves a session with its course, instructor and roster
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSessionByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session ID")
	if !ok {
		return
	}

	session, err := c.sessionService.GetSessionByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.NewSessionResponse(session),
		Timestamp: time.Now(),
	})
}

// ListSessions retrieves a page of sessions
// @Summary List sessions
// @Description Retrieves a paginated list of sessions. Inactive sessions are hidden unless includeInactive is set.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param courseId query int false "Filter by course ID"
// @Param instructorId query int false "Filter by instructor ID"
// @Param includeInactive query bool false "Include archived sessions" default(false)
// @Param from query string false "Only sessions starting on or after this date (YYYY-MM-DD)"
// @Param to query string false "Only sessions starting on or before this date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.SessionListResponse} "Sessions retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	page, size := helpers.GetPaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	filter := repositories.SessionFilter{
		IncludeInactive: ctx.Query("includeInactive") == "true",
	}
	if courseID, err := strconv.ParseInt(ctx.Query("courseId"), 10, 64); err == nil && courseID > 0 {
		filter.CourseID = &courseID
	}
	if instructorID, err := strconv.ParseInt(ctx.Query("instructorId"), 10, 64); err == nil && instructorID > 0 {
		filter.InstructorID = &instructorID
	}
	if from, err := helpers.ParseDate(ctx.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := helpers.ParseDate(ctx.Query("to")); err == nil {
		filter.To = &to
	}

	sessions, total, err := c.sessionService.ListSessions(ctx, filter, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.SessionListResponse{
		Sessions:   []dto.SessionResponse{},
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, dto.NewSessionResponse(session))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// UpdateSession updates an existing session
// @Summary Update a session
// @Description Applies a partial update. Writing endDate or hours without duration runs the inverse rule and recomputes the rest.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.UpdateSessionRequest true "Updated session information"
// @Success 200 {object} dto.APIResponse{data=dto.SessionWriteResponse} "Session updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or blocking validation failure"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session ID")
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	session, warnings, err := c.sessionService.UpdateSession(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SessionWriteResponse{
			Session:  dto.NewSessionResponse(session),
			Warnings: warnings,
		},
		Timestamp: time.Now(),
	})
}

// UpdateAttendees replaces the session roster
// @Summary Replace the session roster
// @Description Replaces the attendee list of a session. Seat warnings are advisory; the instructor/attendee conflict is blocking.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.SessionCheckRequest true "New roster"
// @Success 200 {object} dto.APIResponse{data=dto.SessionWriteResponse} "Roster updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Blocking validation failure"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Session or attendee not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id}/attendees [put]
func (c *SessionController) UpdateAttendees(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session ID")
	if !ok {
		return
	}

	var req struct {
		AttendeeIDs []int64 `json:"attendeeIds"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid roster data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	session, warnings, err := c.sessionService.UpdateAttendees(ctx, id, req.AttendeeIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SessionWriteResponse{
			Session:  dto.NewSessionResponse(session),
			Warnings: warnings,
		},
		Timestamp: time.Now(),
	})
}

// CheckSession runs the advisory seat check
// @Summary Check session seats
// @Description Runs the advisory seat checks an interactive form shows while editing. Warnings are informational only.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionCheckRequest true "Fields to check"
// @Success 200 {object} dto.APIResponse{data=dto.SessionCheckResponse} "Check completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/check [post]
func (c *SessionController) CheckSession(ctx *gin.Context) {
	var req dto.SessionCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid check data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	warnings := c.sessionService.CheckSeats(req)

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SessionCheckResponse{Warnings: warnings},
		Timestamp: time.Now(),
	})
}

// DeleteSession deletes a session
// @Summary Delete a session
// @Description Deletes an existing session and its roster links
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 204 "Session deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "session ID")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
