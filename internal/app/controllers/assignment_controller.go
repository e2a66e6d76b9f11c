package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/app/models/dto"
	"github.com/vuhoang/defcom/internal/app/services"
	"github.com/vuhoang/defcom/internal/middleware"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
)

// AssignmentController handles topic scheduling operations
type AssignmentController struct {
	schedulerService services.SchedulerService
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(schedulerService services.SchedulerService) *AssignmentController {
	return &AssignmentController{schedulerService: schedulerService}
}

func assignmentResponse(a *models.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:            a.ID,
		TopicCode:     a.TopicCode,
		CommitteeCode: a.CommitteeCode,
		Session:       string(a.Session),
		Date:          helpers.FormatDate(a.Date),
		StartTime:     helpers.FormatClock(a.StartMinutes),
		EndTime:       helpers.FormatClock(a.EndMinutes),
	}
}

// CreateAssignment schedules a topic into a committee slot
// @Summary Assign a topic
// @Description Schedules a topic into a committee session slot after re-checking eligibility
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignRequest true "Assignment information"
// @Success 201 {object} dto.APIResponse{data=dto.AssignmentResponse} "Topic assigned"
// @Failure 400 {object} dto.ErrorResponse "Invalid time range or session"
// @Failure 404 {object} dto.ErrorResponse "Committee or topic not found"
// @Failure 409 {object} dto.ErrorResponse "Slot overlap or topic already assigned"
// @Failure 422 {object} dto.ErrorResponse "Topic not eligible"
// @Router /assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req dto.AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assignment data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	start, err := helpers.ParseClock(req.StartTime)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid start time").
			WithField("start_time").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	end, err := helpers.ParseClock(req.EndTime)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid end time").
			WithField("end_time").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	assignment, err := c.schedulerService.Assign(ctx, req.TopicCode, req.CommitteeCode,
		models.Session(req.Session), start, end)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      assignmentResponse(assignment),
		Timestamp: time.Now(),
	})
}

// DeleteAssignment frees a topic's slot
// @Summary Unassign a topic
// @Description Removes the topic's assignment; unassigning an unassigned topic succeeds
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param topicCode path string true "Topic code"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Topic unassigned"
// @Router /assignments/{topicCode} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	if err := c.schedulerService.Unassign(ctx, ctx.Param("topicCode")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Topic unassigned successfully"},
		Timestamp: time.Now(),
	})
}

// ListCommitteeAssignments lists a committee's schedule
// @Summary List committee assignments
// @Description Returns the committee's assignments ordered by date and start time
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=[]dto.AssignmentResponse} "Assignments"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code}/assignments [get]
func (c *AssignmentController) ListCommitteeAssignments(ctx *gin.Context) {
	assignments, err := c.schedulerService.ListByCommittee(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, assignmentResponse(a))
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      responses,
		Timestamp: time.Now(),
	})
}

// SoonestAssignment returns the committee's earliest defense
// @Summary Soonest committee assignment
// @Description Returns the earliest assignment by date and start time, or null when none exists
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse} "Soonest assignment"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code}/assignments/soonest [get]
func (c *AssignmentController) SoonestAssignment(ctx *gin.Context) {
	assignment, err := c.schedulerService.SoonestAssignment(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var data interface{}
	if assignment != nil {
		data = assignmentResponse(assignment)
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      data,
		Timestamp: time.Now(),
	})
}
