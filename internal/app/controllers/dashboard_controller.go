package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/app/services"
	"github.com/openacademy/openacademy/internal/middleware"
)

// DashboardController serves the session board aggregates
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard retrieves the session board
// @Summary Get the session board
// @Description Retrieves per-course session counts and occupancy, overall totals and the next upcoming sessions
// @Tags dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.dashboardService.GetDashboard(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dashboard,
		Timestamp: time.Now(),
	})
}
