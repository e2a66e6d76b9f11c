package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

type schedulerFixture struct {
	lecturers   *mockLecturerRepo
	committees  *mockCommitteeRepo
	topics      *mockTopicRepo
	assignments *mockAssignmentRepo
	scheduler   SchedulerService
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	lecturers := newMockLecturerRepo()
	committees := newMockCommitteeRepo()
	topics := newMockTopicRepo()
	assignments := newMockAssignmentRepo(topics)
	eligibility := NewEligibilityService(committees, topics)
	roster := NewRosterService(committees, lecturers, assignments, NewQuotaService(lecturers), testDefenseConfig())

	committee := testCommittee("COM001", []string{"AI"}, "GV01", "GV02", "GV03", "GV04")
	if err := committees.Create(context.Background(), committee); err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"T001", "T002", "T003"} {
		topics.add(&models.Topic{Code: code, Status: models.TopicApproved, SupervisorCode: "GV09", Tags: []string{"AI"}})
	}

	return &schedulerFixture{
		lecturers:   lecturers,
		committees:  committees,
		topics:      topics,
		assignments: assignments,
		scheduler:   NewSchedulerService(committees, topics, assignments, eligibility, roster, zerolog.Nop()),
	}
}

// draftCommittee builds a draft committee whose panel already satisfies
// the composition rules: quorum met and a doctoral chair seated.
func (f *schedulerFixture) draftCommittee(t *testing.T, code string, tags []string) *models.Committee {
	t.Helper()
	c := &models.Committee{
		Code:        code,
		Name:        "Committee " + code,
		DefenseDate: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		Tags:        tags,
		Status:      models.CommitteeDraft,
	}
	for i, lc := range []string{"A", "B", "C", "D"} {
		memberCode := code + "-GV" + lc
		f.lecturers.lecturers[memberCode] = &models.Lecturer{Code: memberCode, Rank: models.RankPhD}
		c.Members = append(c.Members, &models.CommitteeMember{
			LecturerCode: memberCode,
			IsChair:      i == 0,
			Lecturer:     f.lecturers.lecturers[memberCode],
		})
	}
	if err := f.committees.Create(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSchedulerAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("assign into a free slot", func(t *testing.T) {
		f := newSchedulerFixture(t)
		a, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45)
		if err != nil {
			t.Fatalf("Assign() error = %v", err)
		}
		if a.StartMinutes != 8*60 || a.EndMinutes != 8*60+45 {
			t.Errorf("slot = %d-%d, want 480-525", a.StartMinutes, a.EndMinutes)
		}
		if !a.Date.Equal(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date = %v, want the committee defense date", a.Date)
		}
	})

	t.Run("overlapping slot is rejected", func(t *testing.T) {
		f := newSchedulerFixture(t)
		if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45); err != nil {
			t.Fatal(err)
		}
		// 08:30-09:15 intersects 08:00-08:45.
		_, err := f.scheduler.Assign(ctx, "T002", "COM001", models.SessionMorning, 8*60+30, 9*60+15)
		if !errors.Is(err, apperrors.ErrSlotOverlap) {
			t.Fatalf("Assign() error = %v, want ErrSlotOverlap", err)
		}
	})

	t.Run("back to back slots do not overlap", func(t *testing.T) {
		f := newSchedulerFixture(t)
		if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45); err != nil {
			t.Fatal(err)
		}
		// 08:45-09:30 shares only the boundary instant with 08:00-08:45.
		if _, err := f.scheduler.Assign(ctx, "T002", "COM001", models.SessionMorning, 8*60+45, 9*60+30); err != nil {
			t.Fatalf("Assign() of adjacent slot error = %v", err)
		}
	})

	t.Run("same window in the other session is free", func(t *testing.T) {
		f := newSchedulerFixture(t)
		if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 9*60, 9*60+45); err != nil {
			t.Fatal(err)
		}
		if _, err := f.scheduler.Assign(ctx, "T002", "COM001", models.SessionAfternoon, 9*60, 9*60+45); err != nil {
			t.Fatalf("Assign() in other session error = %v", err)
		}
	})

	t.Run("start must precede end", func(t *testing.T) {
		f := newSchedulerFixture(t)
		_, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 9*60, 9*60)
		if !errors.Is(err, apperrors.ErrInvalidTimeRange) {
			t.Fatalf("Assign() error = %v, want ErrInvalidTimeRange", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newSchedulerFixture(t)
		_, err := f.scheduler.Assign(ctx, "T001", "COM001", models.Session("EVENING"), 9*60, 9*60+45)
		if !errors.Is(err, apperrors.ErrBadRequest) {
			t.Fatalf("Assign() error = %v, want ErrBadRequest", err)
		}
	})

	t.Run("topic can hold only one assignment", func(t *testing.T) {
		f := newSchedulerFixture(t)
		if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45); err != nil {
			t.Fatal(err)
		}
		_, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 9*60, 9*60+45)
		if !errors.Is(err, apperrors.ErrAlreadyAssigned) {
			t.Fatalf("Assign() error = %v, want ErrAlreadyAssigned", err)
		}
	})

	t.Run("eligibility is enforced at commit time", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.topics.add(&models.Topic{Code: "T010", Status: models.TopicApproved, SupervisorCode: "GV01", Tags: []string{"AI"}})
		_, err := f.scheduler.Assign(ctx, "T010", "COM001", models.SessionMorning, 8*60, 8*60+45)
		if !errors.Is(err, apperrors.ErrNotEligible) {
			t.Fatalf("Assign() error = %v, want ErrNotEligible", err)
		}
	})

	t.Run("cancelled committee takes no assignments", func(t *testing.T) {
		f := newSchedulerFixture(t)
		if err := f.committees.UpdateStatus(ctx, "COM001", models.CommitteeScheduled, models.CommitteeCancelled); err != nil {
			t.Fatal(err)
		}
		_, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45)
		if !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Fatalf("Assign() error = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("first assignment schedules a draft committee", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.draftCommittee(t, "COM002", []string{"AI"})
		if _, err := f.scheduler.Assign(ctx, "T001", "COM002", models.SessionMorning, 8*60, 8*60+45); err != nil {
			t.Fatal(err)
		}
		got, err := f.committees.GetByCode(ctx, "COM002")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.CommitteeScheduled {
			t.Errorf("status = %s, want SCHEDULED after first assignment", got.Status)
		}
	})

	t.Run("draft committee with an invalid panel takes no assignments", func(t *testing.T) {
		f := newSchedulerFixture(t)
		draft := testCommittee("COM003", []string{"AI"}, "GV05", "GV06", "GV07")
		draft.Status = models.CommitteeDraft
		if err := f.committees.Create(ctx, draft); err != nil {
			t.Fatal(err)
		}
		_, err := f.scheduler.Assign(ctx, "T001", "COM003", models.SessionMorning, 8*60, 8*60+45)
		if !errors.Is(err, apperrors.ErrInsufficientQuorum) {
			t.Fatalf("Assign() error = %v, want ErrInsufficientQuorum", err)
		}
		got, err := f.committees.GetByCode(ctx, "COM003")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.CommitteeDraft {
			t.Errorf("status = %s, want DRAFT after rejected assignment", got.Status)
		}
	})

	t.Run("chairless draft committee takes no assignments", func(t *testing.T) {
		f := newSchedulerFixture(t)
		draft := testCommittee("COM004", []string{"AI"}, "GV05", "GV06", "GV07", "GV08")
		draft.Status = models.CommitteeDraft
		if err := f.committees.Create(ctx, draft); err != nil {
			t.Fatal(err)
		}
		_, err := f.scheduler.Assign(ctx, "T001", "COM004", models.SessionMorning, 8*60, 8*60+45)
		if !errors.Is(err, apperrors.ErrMissingChair) {
			t.Fatalf("Assign() error = %v, want ErrMissingChair", err)
		}
	})
}

func TestAssignmentConflictPrecedence(t *testing.T) {
	// When an insert violates both the slot and the topic uniqueness
	// rules, the overlap is reported, matching the SQL repository which
	// checks the slot before the unique topic index can fire.
	ctx := context.Background()
	f := newSchedulerFixture(t)
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	first := &models.Assignment{
		TopicCode: "T001", CommitteeCode: "COM001", Date: day,
		Session: models.SessionMorning, StartMinutes: 8 * 60, EndMinutes: 8*60 + 45,
	}
	if err := f.assignments.Create(ctx, first); err != nil {
		t.Fatal(err)
	}

	dup := &models.Assignment{
		TopicCode: "T001", CommitteeCode: "COM001", Date: day,
		Session: models.SessionMorning, StartMinutes: 8*60 + 30, EndMinutes: 9*60 + 15,
	}
	if err := f.assignments.Create(ctx, dup); !errors.Is(err, apperrors.ErrSlotOverlap) {
		t.Fatalf("Create() error = %v, want ErrSlotOverlap", err)
	}
}

func TestSchedulerUnassign(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 8*60, 8*60+45); err != nil {
		t.Fatal(err)
	}

	if err := f.scheduler.Unassign(ctx, "T001"); err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}
	// Freed slot can be reused, and a repeat unassign is a no-op.
	if err := f.scheduler.Unassign(ctx, "T001"); err != nil {
		t.Fatalf("repeat Unassign() error = %v", err)
	}
	if _, err := f.scheduler.Assign(ctx, "T002", "COM001", models.SessionMorning, 8*60, 8*60+45); err != nil {
		t.Fatalf("Assign() into freed slot error = %v", err)
	}
}

func TestSchedulerSoonestAssignment(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)

	soonest, err := f.scheduler.SoonestAssignment(ctx, "COM001")
	if err != nil {
		t.Fatalf("SoonestAssignment() error = %v", err)
	}
	if soonest != nil {
		t.Fatalf("soonest = %+v, want nil for empty committee", soonest)
	}

	if _, err := f.scheduler.Assign(ctx, "T002", "COM001", models.SessionAfternoon, 14*60, 14*60+45); err != nil {
		t.Fatal(err)
	}
	if _, err := f.scheduler.Assign(ctx, "T001", "COM001", models.SessionMorning, 9*60, 9*60+45); err != nil {
		t.Fatal(err)
	}

	soonest, err = f.scheduler.SoonestAssignment(ctx, "COM001")
	if err != nil {
		t.Fatalf("SoonestAssignment() error = %v", err)
	}
	if soonest == nil || soonest.TopicCode != "T001" {
		t.Fatalf("soonest = %+v, want the 09:00 morning slot", soonest)
	}
}

func TestSchedulerSoonestTieBreaksOnTopicCode(t *testing.T) {
	// Two assignments at the same instant in different sessions cannot
	// happen on one committee, so build the tie across dates directly.
	a := &models.Assignment{TopicCode: "T002", Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), StartMinutes: 480}
	b := &models.Assignment{TopicCode: "T001", Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), StartMinutes: 480}
	if !b.Before(a) || a.Before(b) {
		t.Error("equal instants should order by lower topic code")
	}
}
