package services

import (
	"context"
	"fmt"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// EligibilityService decides which topics a committee may judge. It is a
// pure function of the current snapshot; no state is retained between
// calls.
type EligibilityService interface {
	// EligibleTopics returns the topics currently eligible for the
	// committee. An empty result is a valid, non-error outcome.
	EligibleTopics(ctx context.Context, committeeCode string) ([]*models.Topic, error)
	// FilterEligible applies the eligibility rules to an in-memory topic
	// pool; used by the planner against its snapshot.
	FilterEligible(committee *models.Committee, topics []*models.Topic) []*models.Topic
	// Check reports why a single topic is not eligible, or nil. The
	// scheduler re-runs it at commit time.
	Check(committee *models.Committee, topic *models.Topic) error
}

type eligibilityService struct {
	committeeRepo CommitteeRepository
	topicRepo     TopicRepository
}

// NewEligibilityService creates a new eligibility service instance
func NewEligibilityService(committeeRepo CommitteeRepository, topicRepo TopicRepository) EligibilityService {
	return &eligibilityService{
		committeeRepo: committeeRepo,
		topicRepo:     topicRepo,
	}
}

// EligibleTopics resolves eligible topics for a committee from the current
// store snapshot.
func (s *eligibilityService) EligibleTopics(ctx context.Context, committeeCode string) ([]*models.Topic, error) {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicRepo.ListDefensible(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing defensible topics: %w", err)
	}

	return s.FilterEligible(committee, topics), nil
}

// FilterEligible keeps the topics that pass every eligibility rule for the
// committee.
func (s *eligibilityService) FilterEligible(committee *models.Committee, topics []*models.Topic) []*models.Topic {
	eligible := make([]*models.Topic, 0, len(topics))
	for _, topic := range topics {
		if s.Check(committee, topic) == nil {
			eligible = append(eligible, topic)
		}
	}
	return eligible
}

// Check applies the eligibility rules in order and names the first rule
// that fails:
//  1. the topic must be in a defensible status,
//  2. the topic must not already be assigned,
//  3. the topic must share a specialty tag with the committee (an empty
//     committee tag set matches everything),
//  4. the topic's supervisor must not sit on the committee, compared by
//     lecturer code.
func (s *eligibilityService) Check(committee *models.Committee, topic *models.Topic) error {
	if !topic.Status.Defensible() {
		return apperrors.NewValidationError(apperrors.ErrNotEligible,
			fmt.Sprintf("topic %s is %s, not approved for defense", topic.Code, topic.Status))
	}

	if topic.Assignment != nil {
		return apperrors.NewValidationError(apperrors.ErrAlreadyAssigned,
			fmt.Sprintf("topic %s is already scheduled with committee %s",
				topic.Code, topic.Assignment.CommitteeCode))
	}

	if !committee.MatchesTags(topic.Tags) {
		return apperrors.NewValidationError(apperrors.ErrNotEligible,
			fmt.Sprintf("topic %s shares no specialty tag with committee %s",
				topic.Code, committee.Code))
	}

	if committee.HasMember(topic.SupervisorCode) {
		return apperrors.NewValidationError(apperrors.ErrNotEligible,
			fmt.Sprintf("supervisor %s of topic %s is a member of committee %s",
				topic.SupervisorCode, topic.Code, committee.Code))
	}

	return nil
}
