package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vuhoang/defcom/internal/app/models/dto"
	"github.com/vuhoang/defcom/internal/app/services"
	"github.com/vuhoang/defcom/internal/middleware"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
)

// PlannerController runs the batch auto-assignment
type PlannerController struct {
	plannerService services.PlannerService
}

// NewPlannerController creates a new PlannerController
func NewPlannerController(plannerService services.PlannerService) *PlannerController {
	return &PlannerController{plannerService: plannerService}
}

// CreatePlan runs the greedy batch assignment
// @Summary Run batch auto-assignment
// @Description Fills the requested committees with eligible topics; the same snapshot always yields the same plan
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PlanRequest true "Plan scope"
// @Success 201 {object} dto.APIResponse{data=dto.PlanResponse} "Plan executed"
// @Failure 400 {object} dto.ErrorResponse "Invalid plan scope"
// @Failure 404 {object} dto.ErrorResponse "Committee not found"
// @Router /assignment-plans [post]
func (c *PlannerController) CreatePlan(ctx *gin.Context) {
	var req dto.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid plan request").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var (
		plan *services.Plan
		err  error
	)
	switch {
	case len(req.CommitteeCodes) > 0:
		plan, err = c.plannerService.PlanCommittees(ctx, req.CommitteeCodes)
	case req.Date != "":
		var date time.Time
		date, err = helpers.ParseDate(req.Date)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid plan date").
				WithField("date").WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		plan, err = c.plannerService.PlanOpen(ctx, &date)
	default:
		plan, err = c.plannerService.PlanOpen(ctx, nil)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.PlanResponse{
		PlanID:      plan.ID.String(),
		Assignments: make(map[string][]dto.AssignmentResponse, len(plan.Assignments)),
	}
	for committee, placed := range plan.Assignments {
		responses := make([]dto.AssignmentResponse, 0, len(placed))
		for _, a := range placed {
			responses = append(responses, assignmentResponse(a))
		}
		response.Assignments[committee] = responses
	}
	for _, skip := range plan.Skipped {
		response.Skipped = append(response.Skipped, dto.PlanDiagnostic{
			CommitteeCode: skip.CommitteeCode,
			Reason:        skip.Reason,
		})
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}
