package services

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarService renders a committee's defense schedule as an iCalendar
// feed, one VEVENT per assigned topic.
type CalendarService interface {
	CommitteeCalendar(ctx context.Context, committeeCode string) (string, error)
}

type calendarService struct {
	committeeRepo  CommitteeRepository
	topicRepo      TopicRepository
	assignmentRepo AssignmentRepository
}

// NewCalendarService creates a new calendar service instance
func NewCalendarService(
	committeeRepo CommitteeRepository,
	topicRepo TopicRepository,
	assignmentRepo AssignmentRepository,
) CalendarService {
	return &calendarService{
		committeeRepo:  committeeRepo,
		topicRepo:      topicRepo,
		assignmentRepo: assignmentRepo,
	}
}

// CommitteeCalendar serializes the committee's assignments as an ICS feed
func (s *calendarService) CommitteeCalendar(ctx context.Context, committeeCode string) (string, error) {
	committee, err := s.committeeRepo.GetByCode(ctx, committeeCode)
	if err != nil {
		return "", err
	}
	assignments, err := s.assignmentRepo.ListByCommittee(ctx, committeeCode)
	if err != nil {
		return "", fmt.Errorf("error loading assignments of committee %s: %w", committeeCode, err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//defcom//defense-scheduler//EN")
	cal.SetName(fmt.Sprintf("Defenses %s", committee.Code))

	now := time.Now().UTC()
	for _, a := range assignments {
		topic, err := s.topicRepo.GetByCode(ctx, a.TopicCode)
		if err != nil {
			return "", fmt.Errorf("error loading topic %s: %w", a.TopicCode, err)
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%s@defcom", committee.Code, a.TopicCode))
		event.SetDtStampTime(now)
		event.SetStartAt(slotTime(a.Date, a.StartMinutes))
		event.SetEndAt(slotTime(a.Date, a.EndMinutes))
		event.SetSummary(fmt.Sprintf("Defense %s: %s", topic.Code, topic.Title))
		event.SetDescription(fmt.Sprintf("Committee %s, %s session, supervisor %s",
			committee.Code, a.Session, topic.SupervisorCode))
		if committee.Room != "" {
			event.SetLocation(committee.Room)
		}
	}

	return cal.Serialize(), nil
}

// slotTime anchors a minutes-since-midnight offset onto the defense date
func slotTime(date time.Time, minutes int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
