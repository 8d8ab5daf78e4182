package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/openacademy/openacademy/internal/app/controllers"
	"github.com/openacademy/openacademy/internal/app/models"
	"github.com/openacademy/openacademy/internal/middleware"
)

// SetupRouter configures all application routes. Reads are open to any
// authenticated staff account; structural writes are restricted to managers,
// and roster edits are additionally open to officers.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	sessionController *controllers.SessionController,
	partnerController *controllers.PartnerController,
	dashboardController *controllers.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	managerOnly := authMiddleware.RoleRequired(string(models.RoleManager))
	rosterEditors := authMiddleware.RoleRequired(string(models.RoleManager), string(models.RoleOfficer))

	authenticated.POST("/auth/logout", authController.Logout)
	authenticated.GET("/auth/me", authController.GetProfile)

	// Staff account management (managers only)
	users := authenticated.Group("/users")
	users.Use(managerOnly)
	{
		users.GET("", authController.ListUsers)
		users.POST("", authController.CreateUser)
	}

	// Course routes
	courses := authenticated.Group("/courses")
	{
		courses.GET("", courseController.ListCourses)
		courses.GET("/:id", courseController.GetCourseByID)

		coursesManagerProtected := courses.Group("")
		coursesManagerProtected.Use(managerOnly)
		{
			coursesManagerProtected.POST("", courseController.CreateCourse)
			coursesManagerProtected.PUT("/:id", courseController.UpdateCourse)
			coursesManagerProtected.DELETE("/:id", courseController.DeleteCourse)
			coursesManagerProtected.POST("/:id/copy", courseController.CopyCourse)
		}
	}

	// Session routes
	sessions := authenticated.Group("/sessions")
	{
		sessions.GET("", sessionController.ListSessions)
		sessions.GET("/:id", sessionController.GetSessionByID)
		sessions.POST("/check", sessionController.CheckSession)

		// Roster edits are open to officers as well as managers.
		sessions.PUT("/:id/attendees", rosterEditors, sessionController.UpdateAttendees)

		sessionsManagerProtected := sessions.Group("")
		sessionsManagerProtected.Use(managerOnly)
		{
			sessionsManagerProtected.POST("", sessionController.CreateSession)
			sessionsManagerProtected.PUT("/:id", sessionController.UpdateSession)
			sessionsManagerProtected.DELETE("/:id", sessionController.DeleteSession)
		}
	}

	// Partner routes
	partners := authenticated.Group("/partners")
	{
		partners.GET("", partnerController.ListPartners)
		partners.GET("/:id", partnerController.GetPartnerByID)

		partnersEditorProtected := partners.Group("")
		partnersEditorProtected.Use(rosterEditors)
		{
			partnersEditorProtected.POST("", partnerController.CreatePartner)
			partnersEditorProtected.PUT("/:id", partnerController.UpdatePartner)
		}

		partners.DELETE("/:id", managerOnly, partnerController.DeletePartner)
	}

	// Partner tag routes
	partnerTags := authenticated.Group("/partner-tags")
	{
		partnerTags.GET("", partnerController.ListTags)
		partnerTags.POST("", managerOnly, partnerController.CreateTag)
	}

	// Dashboard
	authenticated.GET("/dashboard", dashboardController.GetDashboard)
}
