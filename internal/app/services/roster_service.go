package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// RosterService owns committee membership invariants: quorum, the exactly-
// one-chair rule, chair rank eligibility, and the committee lifecycle.
type RosterService interface {
	CreateCommittee(ctx context.Context, committee *models.Committee) error
	GetCommittee(ctx context.Context, code string) (*models.Committee, error)
	ListCommittees(ctx context.Context, offset uint64, limit int) ([]*models.Committee, int64, error)
	DeleteCommittee(ctx context.Context, code string) error

	AddMember(ctx context.Context, committeeCode, lecturerCode, role string, isChair bool) (*models.CommitteeMember, error)
	RemoveMember(ctx context.Context, committeeCode, lecturerCode string) error

	// Validate loads the committee and runs CheckComposition.
	Validate(ctx context.Context, committeeCode string) error
	// CheckComposition verifies quorum, chair presence and chair rank on an
	// already-loaded committee.
	CheckComposition(committee *models.Committee) error

	// Transition moves the committee through its lifecycle, enforcing the
	// guards of each edge.
	Transition(ctx context.Context, committeeCode string, to models.CommitteeStatus) error
}

type rosterService struct {
	committeeRepo  CommitteeRepository
	lecturerRepo   LecturerRepository
	assignmentRepo AssignmentRepository
	quota          QuotaService
	cfg            DefenseConfig
}

// NewRosterService creates a new roster service instance
func NewRosterService(
	committeeRepo CommitteeRepository,
	lecturerRepo LecturerRepository,
	assignmentRepo AssignmentRepository,
	quota QuotaService,
	cfg DefenseConfig,
) RosterService {
	return &rosterService{
		committeeRepo:  committeeRepo,
		lecturerRepo:   lecturerRepo,
		assignmentRepo: assignmentRepo,
		quota:          quota,
		cfg:            cfg,
	}
}

// CreateCommittee creates a new Draft committee
func (s *rosterService) CreateCommittee(ctx context.Context, committee *models.Committee) error {
	if strings.TrimSpace(committee.Code) == "" {
		return apperrors.NewBadRequestError("committee code cannot be empty")
	}
	if strings.TrimSpace(committee.Name) == "" {
		return apperrors.NewBadRequestError("committee name cannot be empty")
	}
	if committee.DefenseDate.IsZero() {
		return apperrors.NewBadRequestError("committee defense date is required")
	}

	committee.Status = models.CommitteeDraft
	if err := s.committeeRepo.Create(ctx, committee); err != nil {
		return err
	}
	return nil
}

// GetCommittee retrieves a committee with members and tags
func (s *rosterService) GetCommittee(ctx context.Context, code string) (*models.Committee, error) {
	return s.committeeRepo.GetByCode(ctx, code)
}

// ListCommittees retrieves one page of committees and the total count
func (s *rosterService) ListCommittees(ctx context.Context, offset uint64, limit int) ([]*models.Committee, int64, error) {
	committees, err := s.committeeRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing committees: %w", err)
	}
	total, err := s.committeeRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return committees, total, nil
}

// DeleteCommittee soft-deletes a committee. Committees with scheduled
// assignments cannot be deleted.
func (s *rosterService) DeleteCommittee(ctx context.Context, code string) error {
	err := s.committeeRepo.SoftDelete(ctx, code)
	if errors.Is(err, apperrors.ErrHasActiveAssignments) {
		return apperrors.NewValidationError(apperrors.ErrHasActiveAssignments,
			fmt.Sprintf("committee %s still has scheduled assignments", code))
	}
	return err
}

// AddMember appends a lecturer to the committee. A chair appointment
// requires a qualifying academic rank and atomically unsets the previous
// chair. Membership consumes one unit of the lecturer's defense quota,
// reserved under the committee code.
func (s *rosterService) AddMember(ctx context.Context, committeeCode, lecturerCode, role string, isChair bool) (*models.CommitteeMember, error) {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return nil, err
	}

	if committee.HasMember(lecturerCode) {
		return nil, apperrors.NewValidationError(apperrors.ErrDuplicateMember,
			fmt.Sprintf("lecturer %s is already a member of committee %s", lecturerCode, committeeCode))
	}

	lecturer, err := s.lecturerRepo.GetByCode(ctx, lecturerCode)
	if err != nil {
		return nil, err
	}

	if isChair && !s.cfg.ChairEligible(lecturer.Rank) {
		return nil, apperrors.NewValidationError(apperrors.ErrChairNotEligible,
			fmt.Sprintf("lecturer %s holds rank %s, chair requires one of %s",
				lecturerCode, lecturer.Rank, joinRanks(s.cfg.ChairRanks)))
	}

	// Committee membership spends defense quota, keyed by committee code so
	// the later release is idempotent.
	reserved, err := s.quota.Reserve(ctx, lecturerCode, quotaRef(committeeCode))
	if err != nil {
		return nil, err
	}

	member := &models.CommitteeMember{
		CommitteeID:  committee.ID,
		LecturerCode: lecturerCode,
		Role:         role,
		IsChair:      isChair,
		Lecturer:     lecturer,
	}
	if err := s.committeeRepo.AddMember(ctx, member); err != nil {
		// Hand the reserved unit back, but only if this call created the
		// reservation. A concurrent AddMember that lost the insert race
		// must not free the unit the winner's membership consumed.
		if reserved {
			if relErr := s.quota.Release(ctx, lecturerCode, quotaRef(committeeCode)); relErr != nil {
				return nil, errors.Join(err, relErr)
			}
		}
		if errors.Is(err, apperrors.ErrDuplicateMember) {
			return nil, apperrors.NewValidationError(apperrors.ErrDuplicateMember,
				fmt.Sprintf("lecturer %s is already a member of committee %s", lecturerCode, committeeCode))
		}
		return nil, err
	}

	return member, nil
}

// RemoveMember removes a lecturer from the committee. Outside Draft status
// the removal is refused when it would drop membership below quorum.
func (s *rosterService) RemoveMember(ctx context.Context, committeeCode, lecturerCode string) error {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return err
	}

	if !committee.HasMember(lecturerCode) {
		return apperrors.NewResourceNotFoundError(
			fmt.Sprintf("lecturer %s is not a member of committee %s", lecturerCode, committeeCode))
	}

	if committee.Status != models.CommitteeDraft && len(committee.Members)-1 < s.cfg.Quorum {
		return apperrors.NewValidationError(apperrors.ErrQuorumWouldBreak,
			fmt.Sprintf("removing %s would leave committee %s with %d members, needs %d",
				lecturerCode, committeeCode, len(committee.Members)-1, s.cfg.Quorum))
	}

	removed, err := s.committeeRepo.RemoveMember(ctx, committee.ID, lecturerCode)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	return s.quota.Release(ctx, lecturerCode, quotaRef(committeeCode))
}

// Validate loads the committee and checks its composition
func (s *rosterService) Validate(ctx context.Context, committeeCode string) error {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return err
	}
	return s.CheckComposition(committee)
}

// CheckComposition verifies the roster invariants: quorum, exactly one
// chair, and chair rank eligibility. Each violation names the concrete
// state that caused it.
func (s *rosterService) CheckComposition(committee *models.Committee) error {
	if len(committee.Members) < s.cfg.Quorum {
		return apperrors.NewValidationError(apperrors.ErrInsufficientQuorum,
			fmt.Sprintf("committee %s has %d members, needs %d",
				committee.Code, len(committee.Members), s.cfg.Quorum))
	}

	chair := committee.Chair()
	if chair == nil {
		return apperrors.NewValidationError(apperrors.ErrMissingChair,
			fmt.Sprintf("committee %s has no chair", committee.Code))
	}

	if chair.Lecturer == nil || !s.cfg.ChairEligible(chair.Lecturer.Rank) {
		rank := models.AcademicRank("unknown")
		if chair.Lecturer != nil {
			rank = chair.Lecturer.Rank
		}
		return apperrors.NewValidationError(apperrors.ErrChairNotEligible,
			fmt.Sprintf("chair %s of committee %s holds rank %s, requires one of %s",
				chair.LecturerCode, committee.Code, rank, joinRanks(s.cfg.ChairRanks)))
	}

	return nil
}

// Transition moves a committee to a new lifecycle status. Leaving Draft
// requires a valid composition; cancellation requires zero scheduled
// assignments.
func (s *rosterService) Transition(ctx context.Context, committeeCode string, to models.CommitteeStatus) error {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return err
	}

	if !models.CanTransition(committee.Status, to) {
		return apperrors.NewValidationError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("committee %s cannot move from %s to %s", committeeCode, committee.Status, to))
	}

	if committee.Status == models.CommitteeDraft && to != models.CommitteeCancelled {
		if err := s.CheckComposition(committee); err != nil {
			return err
		}
	}

	if to == models.CommitteeCancelled {
		hasAssignments, err := s.assignmentRepo.ExistsByCommittee(ctx, committeeCode)
		if err != nil {
			return err
		}
		if hasAssignments {
			return apperrors.NewValidationError(apperrors.ErrHasActiveAssignments,
				fmt.Sprintf("committee %s still has scheduled assignments", committeeCode))
		}
	}

	return s.committeeRepo.UpdateStatus(ctx, committeeCode, committee.Status, to)
}

// quotaRef builds the reservation ledger key for committee membership.
func quotaRef(committeeCode string) string {
	return "committee:" + committeeCode
}

func joinRanks(ranks []models.AcademicRank) string {
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = string(r)
	}
	return strings.Join(parts, "/")
}
