package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// Plan is the outcome of one batch auto-assignment run. Assignments maps
// committee code to the assignments created for it; every requested
// committee has an entry, empty when nothing could be placed. Skipped
// lists committees the planner refused to fill and why.
type Plan struct {
	ID          uuid.UUID
	Assignments map[string][]*models.Assignment
	Skipped     []PlanSkip
}

// PlanSkip names a committee the planner left untouched
type PlanSkip struct {
	CommitteeCode string
	Reason        string
}

// PlannerService runs the deterministic greedy batch assignment: committees
// in (defense date, code) order each drain the shared pool of eligible
// topics into back-to-back slots, morning session first.
type PlannerService interface {
	// Plan fills the given committees from the given topic pool. Inputs
	// are snapshots; each created assignment is committed through the
	// scheduler's atomic path.
	Plan(ctx context.Context, committees []*models.Committee, topics []*models.Topic) (*Plan, error)
	// PlanOpen plans over all open committees, optionally restricted to
	// one defense date, against all currently defensible topics.
	PlanOpen(ctx context.Context, date *time.Time) (*Plan, error)
	// PlanCommittees plans over the named committees only.
	PlanCommittees(ctx context.Context, committeeCodes []string) (*Plan, error)
}

type plannerService struct {
	committeeRepo  CommitteeRepository
	topicRepo      TopicRepository
	assignmentRepo AssignmentRepository
	eligibility    EligibilityService
	roster         RosterService
	cfg            DefenseConfig
	logger         zerolog.Logger
}

// NewPlannerService creates a new planner service instance
func NewPlannerService(
	committeeRepo CommitteeRepository,
	topicRepo TopicRepository,
	assignmentRepo AssignmentRepository,
	eligibility EligibilityService,
	roster RosterService,
	cfg DefenseConfig,
	logger zerolog.Logger,
) PlannerService {
	return &plannerService{
		committeeRepo:  committeeRepo,
		topicRepo:      topicRepo,
		assignmentRepo: assignmentRepo,
		eligibility:    eligibility,
		roster:         roster,
		cfg:            cfg,
		logger:         logger,
	}
}

// PlanOpen plans over all open committees for a date
func (s *plannerService) PlanOpen(ctx context.Context, date *time.Time) (*Plan, error) {
	committees, err := s.committeeRepo.ListOpen(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("error listing open committees: %w", err)
	}
	topics, err := s.topicRepo.ListDefensible(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing defensible topics: %w", err)
	}
	return s.Plan(ctx, committees, topics)
}

// PlanCommittees plans over an explicit committee list
func (s *plannerService) PlanCommittees(ctx context.Context, committeeCodes []string) (*Plan, error) {
	committees := make([]*models.Committee, 0, len(committeeCodes))
	for _, code := range committeeCodes {
		committee, err := s.committeeRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		committees = append(committees, committee)
	}
	topics, err := s.topicRepo.ListDefensible(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing defensible topics: %w", err)
	}
	return s.Plan(ctx, committees, topics)
}

// Plan runs the greedy pass. Committees are visited in (defense date,
// code) order, topics offered in code order, so two runs over the same
// snapshot produce the same plan. A topic placed with one committee leaves
// the pool for all later ones.
func (s *plannerService) Plan(ctx context.Context, committees []*models.Committee, topics []*models.Topic) (*Plan, error) {
	plan := &Plan{
		ID:          uuid.New(),
		Assignments: make(map[string][]*models.Assignment, len(committees)),
	}

	ordered := make([]*models.Committee, len(committees))
	copy(ordered, committees)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].DefenseDate.Equal(ordered[j].DefenseDate) {
			return ordered[i].DefenseDate.Before(ordered[j].DefenseDate)
		}
		return ordered[i].Code < ordered[j].Code
	})

	pool := make([]*models.Topic, len(topics))
	copy(pool, topics)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Code < pool[j].Code })

	for _, committee := range ordered {
		plan.Assignments[committee.Code] = []*models.Assignment{}

		if committee.Status != models.CommitteeDraft && committee.Status != models.CommitteeScheduled {
			plan.Skipped = append(plan.Skipped, PlanSkip{
				CommitteeCode: committee.Code,
				Reason:        fmt.Sprintf("committee is %s", committee.Status),
			})
			continue
		}
		if err := s.roster.CheckComposition(committee); err != nil {
			plan.Skipped = append(plan.Skipped, PlanSkip{
				CommitteeCode: committee.Code,
				Reason:        err.Error(),
			})
			continue
		}

		placed, rest, err := s.fillCommittee(ctx, committee, pool)
		if err != nil {
			return nil, err
		}
		plan.Assignments[committee.Code] = placed
		pool = rest

		if len(placed) > 0 && committee.Status == models.CommitteeDraft {
			err := s.committeeRepo.UpdateStatus(ctx, committee.Code, models.CommitteeDraft, models.CommitteeScheduled)
			if err != nil && !errors.Is(err, apperrors.ErrInvalidTransition) {
				s.logger.Warn().Err(err).
					Str("committee", committee.Code).
					Msg("Failed to move committee to scheduled after planning")
			}
		}
	}

	s.logger.Info().
		Str("plan_id", plan.ID.String()).
		Int("committees", len(ordered)).
		Int("skipped", len(plan.Skipped)).
		Msg("Auto-assignment plan completed")

	return plan, nil
}

// fillCommittee drains eligible topics into the committee's sessions,
// morning first, packing back-to-back slots of the configured length. It
// returns the created assignments and the topics still unplaced.
func (s *plannerService) fillCommittee(ctx context.Context, committee *models.Committee, pool []*models.Topic) ([]*models.Assignment, []*models.Topic, error) {
	existing, err := s.assignmentRepo.ListByCommittee(ctx, committee.Code)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading assignments of committee %s: %w", committee.Code, err)
	}

	// Cursor per session starts past everything already scheduled there.
	cursor := make(map[models.Session]int, len(s.cfg.Windows))
	for session, window := range s.cfg.Windows {
		cursor[session] = window.Start
	}
	for _, a := range existing {
		if a.EndMinutes > cursor[a.Session] {
			cursor[a.Session] = a.EndMinutes
		}
	}

	var placed []*models.Assignment
	remaining := pool

	for _, session := range models.SessionOrder {
		window, ok := s.cfg.Windows[session]
		if !ok {
			continue
		}
		for cursor[session]+s.cfg.SlotMinutes <= window.End {
			topic, rest := s.takeEligible(committee, remaining)
			if topic == nil {
				return placed, remaining, nil
			}

			assignment := &models.Assignment{
				TopicCode:     topic.Code,
				CommitteeCode: committee.Code,
				Session:       session,
				Date:          committee.DefenseDate,
				StartMinutes:  cursor[session],
				EndMinutes:    cursor[session] + s.cfg.SlotMinutes,
			}
			err := s.assignmentRepo.Create(ctx, assignment)
			switch {
			case err == nil:
				placed = append(placed, assignment)
				remaining = rest
				cursor[session] += s.cfg.SlotMinutes
			case errors.Is(err, apperrors.ErrSlotOverlap):
				// A concurrent writer took the slot; skip past it and keep
				// the topic in the pool.
				cursor[session] += s.cfg.SlotMinutes
			case errors.Is(err, apperrors.ErrAlreadyAssigned):
				// The topic was grabbed elsewhere; drop it and retry the
				// same slot with the next candidate.
				remaining = rest
			default:
				return nil, nil, fmt.Errorf("error committing planned assignment: %w", err)
			}
		}
	}

	return placed, remaining, nil
}

// takeEligible returns the first topic in the pool eligible for the
// committee, and the pool without it. A nil topic means the pool holds
// nothing this committee can judge.
func (s *plannerService) takeEligible(committee *models.Committee, pool []*models.Topic) (*models.Topic, []*models.Topic) {
	for i, topic := range pool {
		if s.eligibility.Check(committee, topic) == nil {
			rest := make([]*models.Topic, 0, len(pool)-1)
			rest = append(rest, pool[:i]...)
			rest = append(rest, pool[i+1:]...)
			return topic, rest
		}
	}
	return nil, pool
}
