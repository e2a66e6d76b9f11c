package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

func eligibilityFixture() (*mockCommitteeRepo, *mockTopicRepo, EligibilityService) {
	committees := newMockCommitteeRepo()
	topics := newMockTopicRepo()
	return committees, topics, NewEligibilityService(committees, topics)
}

func testCommittee(code string, tags []string, memberCodes ...string) *models.Committee {
	c := &models.Committee{
		Code:        code,
		Name:        "Committee " + code,
		DefenseDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		Tags:        tags,
		Status:      models.CommitteeScheduled,
	}
	for _, mc := range memberCodes {
		c.Members = append(c.Members, &models.CommitteeMember{LecturerCode: mc})
	}
	return c
}

func TestEligibilityCheck(t *testing.T) {
	_, _, svc := eligibilityFixture()
	committee := testCommittee("COM001", []string{"AI", "SE"}, "GV01", "GV02")

	tests := []struct {
		name    string
		topic   *models.Topic
		wantErr error
	}{
		{
			name:  "approved topic with shared tag and outside supervisor",
			topic: &models.Topic{Code: "T001", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"AI"}},
		},
		{
			name:    "submitted topic is not defensible",
			topic:   &models.Topic{Code: "T002", Status: models.TopicSubmitted, SupervisorCode: "GV09", Tags: []string{"AI"}},
			wantErr: apperrors.ErrNotEligible,
		},
		{
			name: "already assigned topic",
			topic: &models.Topic{Code: "T003", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"AI"},
				Assignment: &models.Assignment{TopicCode: "T003", CommitteeCode: "COM009"}},
			wantErr: apperrors.ErrAlreadyAssigned,
		},
		{
			name:    "no shared specialty tag",
			topic:   &models.Topic{Code: "T004", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"DB"}},
			wantErr: apperrors.ErrNotEligible,
		},
		{
			name:    "supervisor sits on the committee",
			topic:   &models.Topic{Code: "T005", Status: models.TopicApproved, SupervisorCode: "GV02", Tags: []string{"SE"}},
			wantErr: apperrors.ErrNotEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Check(committee, tt.topic)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Check() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Check() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEligibilityEmptyCommitteeTagsMatchEverything(t *testing.T) {
	_, _, svc := eligibilityFixture()
	committee := testCommittee("COM001", nil, "GV01")
	topic := &models.Topic{Code: "T001", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"DB"}}

	if err := svc.Check(committee, topic); err != nil {
		t.Fatalf("Check() error = %v, want nil for untagged committee", err)
	}
}

func TestEligibleTopics(t *testing.T) {
	ctx := context.Background()
	committees, topics, svc := eligibilityFixture()

	committee := testCommittee("COM001", []string{"AI"}, "GV01", "GV02")
	if err := committees.Create(ctx, committee); err != nil {
		t.Fatal(err)
	}

	topics.add(&models.Topic{Code: "T001", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"AI"}})
	topics.add(&models.Topic{Code: "T002", Status: models.TopicApproved, SupervisorCode: "GV01", Tags: []string{"AI"}}) // supervisor on panel
	topics.add(&models.Topic{Code: "T003", Status: models.TopicRejected, SupervisorCode: "GV09", Tags: []string{"AI"}})
	topics.add(&models.Topic{Code: "T004", Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"SE"}}) // no shared tag

	eligible, err := svc.EligibleTopics(ctx, "COM001")
	if err != nil {
		t.Fatalf("EligibleTopics() error = %v", err)
	}
	if len(eligible) != 1 || eligible[0].Code != "T001" {
		codes := make([]string, len(eligible))
		for i, e := range eligible {
			codes[i] = e.Code
		}
		t.Errorf("eligible = %v, want [T001]", codes)
	}
}

func TestEligibleTopicsEmptyResultIsNotAnError(t *testing.T) {
	ctx := context.Background()
	committees, _, svc := eligibilityFixture()
	if err := committees.Create(ctx, testCommittee("COM001", []string{"AI"})); err != nil {
		t.Fatal(err)
	}

	eligible, err := svc.EligibleTopics(ctx, "COM001")
	if err != nil {
		t.Fatalf("EligibleTopics() error = %v", err)
	}
	if len(eligible) != 0 {
		t.Errorf("eligible = %d topics, want none", len(eligible))
	}
}
