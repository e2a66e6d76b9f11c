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

// LecturerController handles the lecturer directory and quota headroom
type LecturerController struct {
	directoryService services.DirectoryService
	quotaService     services.QuotaService
}

// NewLecturerController creates a new LecturerController
func NewLecturerController(directoryService services.DirectoryService, quotaService services.QuotaService) *LecturerController {
	return &LecturerController{
		directoryService: directoryService,
		quotaService:     quotaService,
	}
}

// CreateLecturer registers a lecturer
// @Summary Create a lecturer
// @Description Registers a lecturer in the directory; rank accepts enum values or legacy degree labels
// @Tags lecturers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLecturerRequest true "Lecturer information"
// @Success 201 {object} dto.APIResponse{data=models.Lecturer} "Lecturer created"
// @Failure 400 {object} dto.ErrorResponse "Invalid lecturer data"
// @Failure 409 {object} dto.ErrorResponse "Lecturer already exists"
// @Router /lecturers [post]
func (c *LecturerController) CreateLecturer(ctx *gin.Context) {
	var req dto.CreateLecturerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid lecturer data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	lecturer := &models.Lecturer{
		Code:         req.Code,
		FullName:     req.FullName,
		Rank:         models.AcademicRank(req.Rank),
		Tags:         req.Tags,
		DefenseQuota: req.DefenseQuota,
	}
	if err := c.directoryService.CreateLecturer(ctx, lecturer); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      lecturer,
		Timestamp: time.Now(),
	})
}

// GetLecturer retrieves a lecturer by code
// @Summary Get lecturer by code
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Param code path string true "Lecturer code"
// @Success 200 {object} dto.APIResponse{data=models.Lecturer} "Lecturer retrieved"
// @Failure 404 {object} dto.ErrorResponse "Lecturer not found"
// @Router /lecturers/{code} [get]
func (c *LecturerController) GetLecturer(ctx *gin.Context) {
	lecturer, err := c.directoryService.GetLecturer(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      lecturer,
		Timestamp: time.Now(),
	})
}

// ListLecturers retrieves one page of lecturers
// @Summary List lecturers
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Lecturers retrieved"
// @Router /lecturers [get]
func (c *LecturerController) ListLecturers(ctx *gin.Context) {
	page, size := helpers.GetPaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	lecturers, total, err := c.directoryService.ListLecturers(ctx, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PagedResponse{
			Items:      lecturers,
			Pagination: helpers.NewPaginationInfo(total, page, limit),
		},
		Timestamp: time.Now(),
	})
}

// GetHeadroom reports the lecturer's remaining defense capacity
// @Summary Lecturer quota headroom
// @Description Reports current load, quota and remaining capacity; zero quota means unlimited
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Param code path string true "Lecturer code"
// @Success 200 {object} dto.APIResponse{data=dto.HeadroomResponse} "Headroom retrieved"
// @Failure 404 {object} dto.ErrorResponse "Lecturer not found"
// @Router /lecturers/{code}/headroom [get]
func (c *LecturerController) GetHeadroom(ctx *gin.Context) {
	code := ctx.Param("code")
	lecturer, err := c.directoryService.GetLecturer(ctx, code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.HeadroomResponse{
		LecturerCode: code,
		Quota:        lecturer.DefenseQuota,
		CurrentLoad:  lecturer.CurrentDefenseLoad,
		Unlimited:    lecturer.DefenseQuota <= 0,
	}
	if !response.Unlimited {
		headroom, err := c.quotaService.Headroom(ctx, code)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		response.Headroom = headroom
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}

// ListTags retrieves the specialty tag catalog
// @Summary List specialty tags
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Tag} "Tags retrieved"
// @Router /tags [get]
func (c *LecturerController) ListTags(ctx *gin.Context) {
	tags, err := c.directoryService.ListTags(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      tags,
		Timestamp: time.Now(),
	})
}
