package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vuhoang/defcom/internal/app/controllers"
	"github.com/vuhoang/defcom/internal/middleware"
	"github.com/vuhoang/defcom/internal/pkg/auth"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	committeeController *controllers.CommitteeController,
	assignmentController *controllers.AssignmentController,
	plannerController *controllers.PlannerController,
	lecturerController *controllers.LecturerController,
	exportController *controllers.ExportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// All routes require a verified identity token.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	committees := authenticated.Group("/committees")
	{
		committees.GET("", committeeController.ListCommittees)
		committees.GET("/:code", committeeController.GetCommittee)
		committees.GET("/:code/validate", committeeController.ValidateCommittee)
		committees.GET("/:code/eligible-topics", committeeController.EligibleTopics)
		committees.GET("/:code/assignments", assignmentController.ListCommitteeAssignments)
		committees.GET("/:code/assignments/soonest", assignmentController.SoonestAssignment)
		committees.GET("/:code/calendar.ics", committeeController.CommitteeCalendar)

		// Roster and lifecycle changes are admin only.
		committeesAdmin := committees.Group("")
		committeesAdmin.Use(authMiddleware.RoleRequired(auth.RoleAdmin))
		{
			committeesAdmin.POST("", committeeController.CreateCommittee)
			committeesAdmin.DELETE("/:code", committeeController.DeleteCommittee)
			committeesAdmin.POST("/:code/members", committeeController.AddMember)
			committeesAdmin.DELETE("/:code/members/:lecturerCode", committeeController.RemoveMember)
			committeesAdmin.PUT("/:code/status", committeeController.TransitionCommittee)
		}
	}

	assignments := authenticated.Group("/assignments")
	assignments.Use(authMiddleware.RoleRequired(auth.RoleAdmin))
	{
		assignments.POST("", assignmentController.CreateAssignment)
		assignments.DELETE("/:topicCode", assignmentController.DeleteAssignment)
	}

	plans := authenticated.Group("/assignment-plans")
	plans.Use(authMiddleware.RoleRequired(auth.RoleAdmin))
	{
		plans.POST("", plannerController.CreatePlan)
	}

	lecturers := authenticated.Group("/lecturers")
	{
		lecturers.GET("", lecturerController.ListLecturers)
		lecturers.GET("/:code", lecturerController.GetLecturer)
		lecturers.GET("/:code/headroom", lecturerController.GetHeadroom)

		lecturersAdmin := lecturers.Group("")
		lecturersAdmin.Use(authMiddleware.RoleRequired(auth.RoleAdmin))
		{
			lecturersAdmin.POST("", lecturerController.CreateLecturer)
		}
	}

	authenticated.GET("/tags", lecturerController.ListTags)

	exports := authenticated.Group("/exports")
	{
		exports.GET("/defense-day", exportController.ExportDefenseDay)
	}
}
