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

// CommitteeController handles committee roster operations
type CommitteeController struct {
	rosterService      services.RosterService
	eligibilityService services.EligibilityService
	calendarService    services.CalendarService
}

// NewCommitteeController creates a new CommitteeController
func NewCommitteeController(
	rosterService services.RosterService,
	eligibilityService services.EligibilityService,
	calendarService services.CalendarService,
) *CommitteeController {
	return &CommitteeController{
		rosterService:      rosterService,
		eligibilityService: eligibilityService,
		calendarService:    calendarService,
	}
}

// CreateCommittee handles committee creation
// @Summary Create a new committee
// @Description Creates a new defense committee in draft status
// @Tags committees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommitteeRequest true "Committee information"
// @Success 201 {object} dto.APIResponse{data=models.Committee} "Committee created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Committee already exists"
// @Router /committees [post]
func (c *CommitteeController) CreateCommittee(ctx *gin.Context) {
	var req dto.CreateCommitteeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid committee data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	defenseDate, err := helpers.ParseDate(req.DefenseDate)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid defense date").
			WithField("defense_date").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	committee := &models.Committee{
		Code:        req.Code,
		Name:        req.Name,
		Room:        req.Room,
		DefenseDate: defenseDate,
		Tags:        req.Tags,
	}
	if err := c.rosterService.CreateCommittee(ctx, committee); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      committee,
		Timestamp: time.Now(),
	})
}

// GetCommittee retrieves a committee by code
// @Summary Get committee by code
// @Description Retrieves a committee with its members and tags
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=models.Committee} "Committee retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code} [get]
func (c *CommitteeController) GetCommittee(ctx *gin.Context) {
	committee, err := c.rosterService.GetCommittee(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      committee,
		Timestamp: time.Now(),
	})
}

// ListCommittees retrieves one page of committees
// @Summary List committees
// @Description Retrieves committees ordered by defense date and code
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Committees retrieved successfully"
// @Router /committees [get]
func (c *CommitteeController) ListCommittees(ctx *gin.Context) {
	page, size := helpers.GetPaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	committees, total, err := c.rosterService.ListCommittees(ctx, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PagedResponse{
			Items:      committees,
			Pagination: helpers.NewPaginationInfo(total, page, limit),
		},
		Timestamp: time.Now(),
	})
}

// DeleteCommittee soft-deletes a committee
// @Summary Delete a committee
// @Description Soft-deletes a committee without scheduled assignments
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Committee deleted"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Failure 409 {object} dto.ErrorResponse "Committee has active assignments"
// @Router /committees/{code} [delete]
func (c *CommitteeController) DeleteCommittee(ctx *gin.Context) {
	if err := c.rosterService.DeleteCommittee(ctx, ctx.Param("code")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Committee deleted successfully"},
		Timestamp: time.Now(),
	})
}

// AddMember adds a lecturer to a committee
// @Summary Add a committee member
// @Description Adds a lecturer to the committee, optionally as chair
// @Tags committees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Param request body dto.AddMemberRequest true "Member information"
// @Success 201 {object} dto.APIResponse{data=models.CommitteeMember} "Member added"
// @Failure 404 {object} dto.ErrorResponse "Committee or lecturer not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate member or quota exceeded"
// @Failure 422 {object} dto.ErrorResponse "Chair rank not eligible"
// @Router /committees/{code}/members [post]
func (c *CommitteeController) AddMember(ctx *gin.Context) {
	var req dto.AddMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid member data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	member, err := c.rosterService.AddMember(ctx, ctx.Param("code"), req.LecturerCode, req.Role, req.IsChair)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      member,
		Timestamp: time.Now(),
	})
}

// RemoveMember removes a lecturer from a committee
// @Summary Remove a committee member
// @Description Removes a lecturer; outside draft status the removal may not break quorum
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Param lecturerCode path string true "Lecturer code"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Member removed"
// @Failure 404 {object} dto.ErrorResponse "Committee or member not found"
// @Failure 409 {object} dto.ErrorResponse "Removal would break quorum"
// @Router /committees/{code}/members/{lecturerCode} [delete]
func (c *CommitteeController) RemoveMember(ctx *gin.Context) {
	err := c.rosterService.RemoveMember(ctx, ctx.Param("code"), ctx.Param("lecturerCode"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Member removed successfully"},
		Timestamp: time.Now(),
	})
}

// ValidateCommittee checks committee composition
// @Summary Validate committee composition
// @Description Checks quorum, chair presence and chair rank without changing state
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=dto.ValidationResultResponse} "Validation result"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code}/validate [get]
func (c *CommitteeController) ValidateCommittee(ctx *gin.Context) {
	err := c.rosterService.Validate(ctx, ctx.Param("code"))
	if err != nil {
		var result dto.ValidationResultResponse
		if ok := asCompositionProblem(err, &result); !ok {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.APIResponse{
			Data:      result,
			Timestamp: time.Now(),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ValidationResultResponse{Valid: true},
		Timestamp: time.Now(),
	})
}

// TransitionCommittee moves a committee through its lifecycle
// @Summary Change committee status
// @Description Applies a lifecycle transition with its guards
// @Tags committees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Status changed"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 422 {object} dto.ErrorResponse "Composition invalid"
// @Router /committees/{code}/status [put]
func (c *CommitteeController) TransitionCommittee(ctx *gin.Context) {
	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid transition data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	err := c.rosterService.Transition(ctx, ctx.Param("code"), models.CommitteeStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Committee status updated successfully"},
		Timestamp: time.Now(),
	})
}

// EligibleTopics lists topics the committee may judge
// @Summary List eligible topics
// @Description Returns topics currently eligible for this committee; an empty list is a valid outcome
// @Tags committees
// @Produce json
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {object} dto.APIResponse{data=[]models.Topic} "Eligible topics"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code}/eligible-topics [get]
func (c *CommitteeController) EligibleTopics(ctx *gin.Context) {
	topics, err := c.eligibilityService.EligibleTopics(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      topics,
		Timestamp: time.Now(),
	})
}

// CommitteeCalendar serves the committee's schedule as an ICS feed
// @Summary Committee calendar feed
// @Description Serves the committee's defense schedule as an iCalendar file
// @Tags committees
// @Produce text/calendar
// @Security BearerAuth
// @Param code path string true "Committee code"
// @Success 200 {string} string "ICS calendar"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /committees/{code}/calendar.ics [get]
func (c *CommitteeController) CommitteeCalendar(ctx *gin.Context) {
	feed, err := c.calendarService.CommitteeCalendar(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+ctx.Param("code")+`.ics"`)
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
