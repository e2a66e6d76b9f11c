package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
)

// ExportService renders defense-day schedules as Excel workbooks, one sheet
// per committee sitting on the requested date.
type ExportService interface {
	// ExportDefenseDay builds the workbook for one defense date. It returns
	// the file contents and a suggested filename.
	ExportDefenseDay(ctx context.Context, date time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	committeeRepo  CommitteeRepository
	topicRepo      TopicRepository
	assignmentRepo AssignmentRepository
	logger         zerolog.Logger
}

// NewExportService creates a new export service instance
func NewExportService(
	committeeRepo CommitteeRepository,
	topicRepo TopicRepository,
	assignmentRepo AssignmentRepository,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		committeeRepo:  committeeRepo,
		topicRepo:      topicRepo,
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// ExportDefenseDay produces the defense-day workbook
func (s *exportService) ExportDefenseDay(ctx context.Context, date time.Time) (*bytes.Buffer, string, error) {
	committees, err := s.committeeRepo.ListOpen(ctx, &date)
	if err != nil {
		return nil, "", fmt.Errorf("error listing committees for export: %w", err)
	}
	if len(committees) == 0 {
		return nil, "", apperrors.NewResourceNotFoundError(
			fmt.Sprintf("no committees sit on %s", helpers.FormatDate(date)))
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, committee := range committees {
		sheet := committee.Code
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", fmt.Errorf("error creating sheet %s: %w", sheet, err)
		}

		if err := s.writeCommitteeSheet(ctx, f, sheet, committee, headerStyle); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to serialize defense-day workbook")
		return nil, "", fmt.Errorf("error generating workbook: %w", err)
	}

	filename := fmt.Sprintf("defense-day-%s.xlsx", helpers.FormatDate(date))
	return buf, filename, nil
}

// writeCommitteeSheet renders one committee's schedule onto its sheet
func (s *exportService) writeCommitteeSheet(ctx context.Context, f *excelize.File, sheet string, committee *models.Committee, headerStyle int) error {
	assignments, err := s.assignmentRepo.ListByCommittee(ctx, committee.Code)
	if err != nil {
		return fmt.Errorf("error loading assignments of committee %s: %w", committee.Code, err)
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "D", "D", 44)
	f.SetColWidth(sheet, "E", "E", 14)

	title := fmt.Sprintf("%s - %s (%s)", committee.Code, committee.Name, helpers.FormatDate(committee.DefenseDate))
	if committee.Room != "" {
		title += " - " + committee.Room
	}
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", "E1")

	row := 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Session")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Slot")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Topic")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "Title")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "Supervisor")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), headerStyle)

	for _, a := range assignments {
		row++
		topic, err := s.topicRepo.GetByCode(ctx, a.TopicCode)
		if err != nil {
			return fmt.Errorf("error loading topic %s: %w", a.TopicCode, err)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(a.Session))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row),
			helpers.FormatClock(a.StartMinutes)+"-"+helpers.FormatClock(a.EndMinutes))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), topic.Code)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), topic.Title)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), topic.SupervisorCode)
	}

	// Panel roster below the schedule
	row += 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Panel")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), headerStyle)
	for _, m := range committee.Members {
		row++
		name := m.LecturerCode
		rank := ""
		if m.Lecturer != nil {
			name = fmt.Sprintf("%s (%s)", m.Lecturer.FullName, m.LecturerCode)
			rank = string(m.Lecturer.Rank)
		}
		role := m.Role
		if m.IsChair {
			role = "Chair"
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), role)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rank)
	}

	return nil
}
