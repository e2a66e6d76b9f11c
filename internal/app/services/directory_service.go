package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// DirectoryService exposes the lecturer directory and the specialty tag
// catalog.
type DirectoryService interface {
	CreateLecturer(ctx context.Context, lecturer *models.Lecturer) error
	GetLecturer(ctx context.Context, code string) (*models.Lecturer, error)
	ListLecturers(ctx context.Context, offset uint64, limit int) ([]*models.Lecturer, int64, error)
	ListTags(ctx context.Context) ([]*models.Tag, error)
}

type directoryService struct {
	lecturerRepo LecturerRepository
	tagRepo      TagRepository
}

// NewDirectoryService creates a new directory service instance
func NewDirectoryService(lecturerRepo LecturerRepository, tagRepo TagRepository) DirectoryService {
	return &directoryService{
		lecturerRepo: lecturerRepo,
		tagRepo:      tagRepo,
	}
}

// CreateLecturer registers a lecturer in the directory
func (s *directoryService) CreateLecturer(ctx context.Context, lecturer *models.Lecturer) error {
	if strings.TrimSpace(lecturer.Code) == "" {
		return apperrors.NewBadRequestError("lecturer code cannot be empty")
	}
	if strings.TrimSpace(lecturer.FullName) == "" {
		return apperrors.NewBadRequestError("lecturer name cannot be empty")
	}
	rank, ok := models.ParseAcademicRank(string(lecturer.Rank))
	if !ok {
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown academic rank %q", lecturer.Rank))
	}
	lecturer.Rank = rank
	if lecturer.DefenseQuota < 0 {
		return apperrors.NewBadRequestError("defense quota cannot be negative")
	}
	return s.lecturerRepo.Create(ctx, lecturer)
}

// GetLecturer retrieves a lecturer by code
func (s *directoryService) GetLecturer(ctx context.Context, code string) (*models.Lecturer, error) {
	return s.lecturerRepo.GetByCode(ctx, code)
}

// ListLecturers retrieves one page of lecturers and the total count
func (s *directoryService) ListLecturers(ctx context.Context, offset uint64, limit int) ([]*models.Lecturer, int64, error) {
	lecturers, err := s.lecturerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing lecturers: %w", err)
	}
	total, err := s.lecturerRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return lecturers, total, nil
}

// ListTags retrieves the specialty tag catalog
func (s *directoryService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}
