package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
	"github.com/vuhoang/defcom/internal/pkg/helpers"
)

// SchedulerService places topics into committee defense slots. Eligibility
// is re-checked at commit time; the repository enforces slot exclusivity
// and the one-assignment-per-topic rule under concurrency.
type SchedulerService interface {
	Assign(ctx context.Context, topicCode, committeeCode string, session models.Session, startMinutes, endMinutes int) (*models.Assignment, error)
	// Unassign frees the topic's slot. Unassigning an unassigned topic is a
	// no-op.
	Unassign(ctx context.Context, topicCode string) error
	ListByCommittee(ctx context.Context, committeeCode string) ([]*models.Assignment, error)
	// SoonestAssignment returns the committee's earliest assignment by
	// (date, start, topic code), or nil when it has none.
	SoonestAssignment(ctx context.Context, committeeCode string) (*models.Assignment, error)
}

type schedulerService struct {
	committeeRepo  CommitteeRepository
	topicRepo      TopicRepository
	assignmentRepo AssignmentRepository
	eligibility    EligibilityService
	roster         RosterService
	logger         zerolog.Logger
}

// NewSchedulerService creates a new scheduler service instance
func NewSchedulerService(
	committeeRepo CommitteeRepository,
	topicRepo TopicRepository,
	assignmentRepo AssignmentRepository,
	eligibility EligibilityService,
	roster RosterService,
	logger zerolog.Logger,
) SchedulerService {
	return &schedulerService{
		committeeRepo:  committeeRepo,
		topicRepo:      topicRepo,
		assignmentRepo: assignmentRepo,
		eligibility:    eligibility,
		roster:         roster,
		logger:         logger,
	}
}

// Assign schedules a topic into a committee slot. The committee must be
// open (Draft or Scheduled), the topic must pass the eligibility rules
// against the current snapshot, and the [start,end) window must not
// intersect any existing assignment of the same committee session.
func (s *schedulerService) Assign(ctx context.Context, topicCode, committeeCode string, session models.Session, startMinutes, endMinutes int) (*models.Assignment, error) {
	if !session.Valid() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown session %q", session))
	}
	if startMinutes < 0 || endMinutes > 24*60 || startMinutes >= endMinutes {
		return nil, apperrors.NewValidationError(apperrors.ErrInvalidTimeRange,
			fmt.Sprintf("slot %s-%s is not a valid time range",
				helpers.FormatClock(startMinutes), helpers.FormatClock(endMinutes)))
	}

	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return nil, err
	}
	if committee.Status != models.CommitteeDraft && committee.Status != models.CommitteeScheduled {
		return nil, apperrors.NewValidationError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("committee %s is %s, assignments are only accepted while draft or scheduled",
				committeeCode, committee.Status))
	}

	// A draft committee's first assignment moves it to scheduled, so it
	// must already satisfy the composition rules.
	if committee.Status == models.CommitteeDraft {
		if err := s.roster.CheckComposition(committee); err != nil {
			return nil, err
		}
	}

	topic, err := s.topicRepo.GetByCode(ctx, topicCode)
	if err != nil {
		return nil, err
	}

	if err := s.eligibility.Check(committee, topic); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		TopicCode:     topicCode,
		CommitteeCode: committeeCode,
		Session:       session,
		Date:          committee.DefenseDate,
		StartMinutes:  startMinutes,
		EndMinutes:    endMinutes,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, apperrors.ErrSlotOverlap) {
			return nil, apperrors.NewValidationError(apperrors.ErrSlotOverlap,
				fmt.Sprintf("slot %s-%s overlaps an existing %s assignment of committee %s",
					helpers.FormatClock(startMinutes), helpers.FormatClock(endMinutes),
					session, committeeCode))
		}
		if errors.Is(err, apperrors.ErrAlreadyAssigned) {
			return nil, apperrors.NewValidationError(apperrors.ErrAlreadyAssigned,
				fmt.Sprintf("topic %s is already scheduled", topicCode))
		}
		return nil, err
	}

	s.logger.Info().
		Str("topic", topicCode).
		Str("committee", committeeCode).
		Str("session", string(session)).
		Str("slot", helpers.FormatClock(startMinutes)+"-"+helpers.FormatClock(endMinutes)).
		Msg("Topic assigned")

	// First assignment moves a draft committee to scheduled. Losing this
	// race to a concurrent transition is fine, the status already moved.
	if committee.Status == models.CommitteeDraft {
		err := s.committeeRepo.UpdateStatus(ctx, committeeCode, models.CommitteeDraft, models.CommitteeScheduled)
		if err != nil && !errors.Is(err, apperrors.ErrInvalidTransition) {
			s.logger.Warn().Err(err).
				Str("committee", committeeCode).
				Msg("Failed to move committee to scheduled after assignment")
		}
	}

	return assignment, nil
}

// Unassign removes a topic's assignment if it has one
func (s *schedulerService) Unassign(ctx context.Context, topicCode string) error {
	deleted, err := s.assignmentRepo.DeleteByTopic(ctx, topicCode)
	if err != nil {
		return fmt.Errorf("error removing assignment: %w", err)
	}
	if deleted {
		s.logger.Info().Str("topic", topicCode).Msg("Topic unassigned")
	}
	return nil
}

// ListByCommittee returns the committee's assignments ordered by date and
// start time.
func (s *schedulerService) ListByCommittee(ctx context.Context, committeeCode string) ([]*models.Assignment, error) {
	if _, err := s.committeeRepo.GetByCode(ctx, committeeCode); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListByCommittee(ctx, committeeCode)
}

// SoonestAssignment finds the earliest assignment of a committee
func (s *schedulerService) SoonestAssignment(ctx context.Context, committeeCode string) (*models.Assignment, error) {
	if _, err := s.committeeRepo.GetByCode(ctx, committeeCode); err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByCommittee(ctx, committeeCode)
	if err != nil {
		return nil, err
	}

	var soonest *models.Assignment
	for _, a := range assignments {
		if soonest == nil || a.Before(soonest) {
			soonest = a
		}
	}
	return soonest, nil
}
