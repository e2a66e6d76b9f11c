package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vuhoang/defcom/internal/app/models/dto"
	"github.com/vuhoang/defcom/internal/app/services"
	"github.com/vuhoang/defcom/internal/middleware"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportController serves schedule exports
type ExportController struct {
	exportService services.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// ExportDefenseDay downloads the defense-day workbook
// @Summary Export a defense day
// @Description Builds an Excel workbook with one sheet per committee sitting on the date
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param date query string true "Defense date (2006-01-02)"
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 404 {object} dto.ErrorResponse "No committees on that date"
// @Router /exports/defense-day [get]
func (c *ExportController) ExportDefenseDay(ctx *gin.Context) {
	dateStr := ctx.Query("date")
	date, err := helpers.ParseDate(dateStr)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid export date").
			WithField("date").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	buf, filename, err := c.exportService.ExportDefenseDay(ctx, date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
