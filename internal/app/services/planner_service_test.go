package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vuhoang/defcom/internal/app/models"
)

type plannerFixture struct {
	lecturers   *mockLecturerRepo
	committees  *mockCommitteeRepo
	topics      *mockTopicRepo
	assignments *mockAssignmentRepo
	planner     PlannerService
}

func newPlannerFixture() *plannerFixture {
	lecturers := newMockLecturerRepo()
	committees := newMockCommitteeRepo()
	topics := newMockTopicRepo()
	assignments := newMockAssignmentRepo(topics)
	eligibility := NewEligibilityService(committees, topics)
	roster := NewRosterService(committees, lecturers, assignments, NewQuotaService(lecturers), testDefenseConfig())
	return &plannerFixture{
		lecturers:   lecturers,
		committees:  committees,
		topics:      topics,
		assignments: assignments,
		planner: NewPlannerService(committees, topics, assignments, eligibility, roster,
			testDefenseConfig(), zerolog.Nop()),
	}
}

// validCommittee builds a scheduled committee with a full doctoral panel.
func (f *plannerFixture) validCommittee(t *testing.T, code string, date time.Time, tags []string) *models.Committee {
	t.Helper()
	c := &models.Committee{
		Code:        code,
		Name:        "Committee " + code,
		DefenseDate: date,
		Tags:        tags,
		Status:      models.CommitteeScheduled,
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

func (f *plannerFixture) addTopics(codes ...string) {
	for _, code := range codes {
		f.topics.add(&models.Topic{Code: code, Status: models.TopicApproved, SupervisorCode: "EXT", Tags: []string{"AI"}})
	}
}

var planDate = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func TestPlannerFillsMorningThenAfternoon(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	f.validCommittee(t, "COM001", planDate, []string{"AI"})
	// Morning window 08:00-11:30 holds four 45-minute slots, the fifth
	// topic lands in the afternoon.
	f.addTopics("T001", "T002", "T003", "T004", "T005")

	plan, err := f.planner.PlanOpen(ctx, &planDate)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}

	placed := plan.Assignments["COM001"]
	if len(placed) != 5 {
		t.Fatalf("placed %d assignments, want 5", len(placed))
	}
	for i, a := range placed[:4] {
		if a.Session != models.SessionMorning {
			t.Errorf("assignment %d session = %s, want MORNING", i, a.Session)
		}
		wantStart := 8*60 + i*45
		if a.StartMinutes != wantStart || a.EndMinutes != wantStart+45 {
			t.Errorf("assignment %d slot = %d-%d, want %d-%d back to back",
				i, a.StartMinutes, a.EndMinutes, wantStart, wantStart+45)
		}
	}
	if placed[4].Session != models.SessionAfternoon || placed[4].StartMinutes != 13*60+30 {
		t.Errorf("fifth assignment = %s %d, want afternoon 13:30", placed[4].Session, placed[4].StartMinutes)
	}
}

func TestPlannerIsDeterministic(t *testing.T) {
	ctx := context.Background()
	run := func() *Plan {
		f := newPlannerFixture()
		f.validCommittee(t, "COM002", planDate, []string{"AI"})
		f.validCommittee(t, "COM001", planDate, []string{"AI"})
		f.addTopics("T003", "T001", "T002")
		plan, err := f.planner.PlanOpen(ctx, &planDate)
		if err != nil {
			t.Fatalf("PlanOpen() error = %v", err)
		}
		return plan
	}

	first, second := run(), run()
	for committee, placed := range first.Assignments {
		other := second.Assignments[committee]
		if len(placed) != len(other) {
			t.Fatalf("committee %s: %d vs %d assignments across runs", committee, len(placed), len(other))
		}
		for i := range placed {
			if placed[i].TopicCode != other[i].TopicCode ||
				placed[i].Session != other[i].Session ||
				placed[i].StartMinutes != other[i].StartMinutes {
				t.Errorf("committee %s slot %d differs across runs: %+v vs %+v",
					committee, i, placed[i], other[i])
			}
		}
	}
}

func TestPlannerCommitteeOrderIsDateThenCode(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	later := planDate.AddDate(0, 0, 1)
	f.validCommittee(t, "COM001", later, []string{"AI"})
	f.validCommittee(t, "COM002", planDate, []string{"AI"})
	f.addTopics("T001")

	plan, err := f.planner.PlanOpen(ctx, nil)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}
	// The single topic goes to COM002, whose date comes first.
	if len(plan.Assignments["COM002"]) != 1 {
		t.Errorf("COM002 got %d assignments, want 1", len(plan.Assignments["COM002"]))
	}
	if len(plan.Assignments["COM001"]) != 0 {
		t.Errorf("COM001 got %d assignments, want 0", len(plan.Assignments["COM001"]))
	}
}

func TestPlannerTopicLeavesThePoolOncePlaced(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	f.validCommittee(t, "COM001", planDate, []string{"AI"})
	f.validCommittee(t, "COM002", planDate, []string{"AI"})
	f.addTopics("T001", "T002", "T003")

	plan, err := f.planner.PlanOpen(ctx, &planDate)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}

	seen := make(map[string]string)
	for committee, placed := range plan.Assignments {
		for _, a := range placed {
			if prev, dup := seen[a.TopicCode]; dup {
				t.Errorf("topic %s placed with both %s and %s", a.TopicCode, prev, committee)
			}
			seen[a.TopicCode] = committee
		}
	}
	if len(seen) != 3 {
		t.Errorf("%d topics placed, want all 3", len(seen))
	}
}

func TestPlannerSkipsInvalidCommittees(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()

	// Three members only, never fillable.
	short := &models.Committee{
		Code:        "COM001",
		Name:        "Committee COM001",
		DefenseDate: planDate,
		Tags:        []string{"AI"},
		Status:      models.CommitteeScheduled,
	}
	for i, lc := range []string{"A", "B", "C"} {
		code := "COM001-GV" + lc
		f.lecturers.lecturers[code] = &models.Lecturer{Code: code, Rank: models.RankPhD}
		short.Members = append(short.Members, &models.CommitteeMember{
			LecturerCode: code, IsChair: i == 0, Lecturer: f.lecturers.lecturers[code],
		})
	}
	if err := f.committees.Create(ctx, short); err != nil {
		t.Fatal(err)
	}
	f.validCommittee(t, "COM002", planDate, []string{"AI"})
	f.addTopics("T001")

	plan, err := f.planner.PlanOpen(ctx, &planDate)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}

	if len(plan.Skipped) != 1 || plan.Skipped[0].CommitteeCode != "COM001" {
		t.Fatalf("skipped = %+v, want COM001 only", plan.Skipped)
	}
	if !strings.Contains(plan.Skipped[0].Reason, "3 members") {
		t.Errorf("skip reason %q does not name the quorum shortfall", plan.Skipped[0].Reason)
	}
	// Every requested committee reports a (possibly empty) entry.
	if _, ok := plan.Assignments["COM001"]; !ok {
		t.Error("skipped committee missing from the assignment map")
	}
	if len(plan.Assignments["COM002"]) != 1 {
		t.Errorf("COM002 got %d assignments, want the topic COM001 could not take", len(plan.Assignments["COM002"]))
	}
}

func TestPlannerRespectsExistingAssignments(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	f.validCommittee(t, "COM001", planDate, []string{"AI"})
	f.addTopics("T001", "T002")

	// An assignment already occupies 08:00-08:45.
	f.topics.add(&models.Topic{Code: "T000", Status: models.TopicApproved, SupervisorCode: "EXT", Tags: []string{"AI"}})
	err := f.assignments.Create(ctx, &models.Assignment{
		TopicCode:     "T000",
		CommitteeCode: "COM001",
		Session:       models.SessionMorning,
		Date:          planDate,
		StartMinutes:  8 * 60,
		EndMinutes:    8*60 + 45,
	})
	if err != nil {
		t.Fatal(err)
	}

	plan, err := f.planner.PlanOpen(ctx, &planDate)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}

	placed := plan.Assignments["COM001"]
	if len(placed) != 2 {
		t.Fatalf("placed %d assignments, want 2", len(placed))
	}
	if placed[0].StartMinutes != 8*60+45 {
		t.Errorf("first planned slot starts at %d, want 525 after the existing assignment", placed[0].StartMinutes)
	}
}

func TestPlannerIgnoresIneligibleTopics(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	c := f.validCommittee(t, "COM001", planDate, []string{"AI"})
	// Supervised by a panel member, never placeable here.
	f.topics.add(&models.Topic{Code: "T001", Status: models.TopicApproved,
		SupervisorCode: c.Members[1].LecturerCode, Tags: []string{"AI"}})
	// Wrong specialty.
	f.topics.add(&models.Topic{Code: "T002", Status: models.TopicApproved, SupervisorCode: "EXT", Tags: []string{"DB"}})
	f.addTopics("T003")

	plan, err := f.planner.PlanOpen(ctx, &planDate)
	if err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}

	placed := plan.Assignments["COM001"]
	if len(placed) != 1 || placed[0].TopicCode != "T003" {
		t.Fatalf("placed = %+v, want only T003", placed)
	}
}

func TestPlannerSchedulesDraftCommitteeOnFirstPlacement(t *testing.T) {
	ctx := context.Background()
	f := newPlannerFixture()
	c := f.validCommittee(t, "COM001", planDate, []string{"AI"})
	c.Status = models.CommitteeDraft
	f.addTopics("T001")

	if _, err := f.planner.PlanOpen(ctx, &planDate); err != nil {
		t.Fatalf("PlanOpen() error = %v", err)
	}
	got, err := f.committees.GetByCode(ctx, "COM001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.CommitteeScheduled {
		t.Errorf("status = %s, want SCHEDULED after planning", got.Status)
	}
}
