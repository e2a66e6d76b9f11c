package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// QuotaService tracks per-lecturer defense-committee capacity. Reservations
// are keyed by a caller-supplied ref (here the committee code) so a
// committed reservation can be released exactly once.
type QuotaService interface {
	// Reserve takes one unit of capacity under ref. It reports whether
	// this call created the reservation; false means the ref was already
	// held, so the caller must not release what it does not own.
	Reserve(ctx context.Context, lecturerCode, ref string) (bool, error)
	Release(ctx context.Context, lecturerCode, ref string) error
	Headroom(ctx context.Context, lecturerCode string) (int, error)
}

type quotaService struct {
	lecturerRepo LecturerRepository
}

// NewQuotaService creates a new quota service instance
func NewQuotaService(lecturerRepo LecturerRepository) QuotaService {
	return &quotaService{
		lecturerRepo: lecturerRepo,
	}
}

// Reserve takes one unit of the lecturer's defense capacity. The increment
// is a single atomic check-and-update in the repository, so two racing
// reservations cannot both spend the last unit of headroom.
func (s *quotaService) Reserve(ctx context.Context, lecturerCode, ref string) (bool, error) {
	reserved, err := s.lecturerRepo.ReserveLoad(ctx, lecturerCode, ref, 1)
	if err == nil {
		return reserved, nil
	}

	if errors.Is(err, apperrors.ErrQuotaExceeded) || errors.Is(err, apperrors.ErrLecturerNotFound) {
		return false, s.describeFailure(ctx, lecturerCode, err)
	}
	return false, fmt.Errorf("error reserving lecturer load: %w", err)
}

// Release returns one unit of capacity reserved under ref. Releasing a ref
// that was never reserved, or was already released, is a no-op.
func (s *quotaService) Release(ctx context.Context, lecturerCode, ref string) error {
	_, err := s.lecturerRepo.ReleaseLoad(ctx, lecturerCode, ref)
	if err != nil {
		return fmt.Errorf("error releasing lecturer load: %w", err)
	}
	return nil
}

// Headroom reports how many more commitments the lecturer can take.
// Unlimited quota yields MaxInt.
func (s *quotaService) Headroom(ctx context.Context, lecturerCode string) (int, error) {
	lecturer, err := s.lecturerRepo.GetByCode(ctx, lecturerCode)
	if err != nil {
		return 0, err
	}
	return lecturer.Headroom(), nil
}

// describeFailure reloads the lecturer to attach the concrete quota state
// to the returned domain error.
func (s *quotaService) describeFailure(ctx context.Context, lecturerCode string, cause error) error {
	if errors.Is(cause, apperrors.ErrLecturerNotFound) {
		return apperrors.NewValidationError(cause,
			fmt.Sprintf("lecturer %s not found", lecturerCode))
	}

	lecturer, err := s.lecturerRepo.GetByCode(ctx, lecturerCode)
	if err != nil {
		return cause
	}
	return apperrors.NewValidationError(apperrors.ErrQuotaExceeded,
		fmt.Sprintf("lecturer %s already at quota %d/%d",
			lecturerCode, lecturer.CurrentDefenseLoad, lecturer.DefenseQuota))
}
