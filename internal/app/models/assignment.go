package models

import "time"

// Assignment schedules a topic into a committee time slot. A topic has at
// most one active assignment; within one committee+date+session the
// [start,end) windows of distinct assignments never intersect.
type Assignment struct {
	ID            int64     `json:"id"`
	TopicCode     string    `json:"topic_code"`
	CommitteeCode string    `json:"committee_code"`
	Session       Session   `json:"session"`
	Date          time.Time `json:"date"`
	StartMinutes  int       `json:"start_minutes"` // minutes since midnight
	EndMinutes    int       `json:"end_minutes"`
}

// Overlaps reports whether two assignments occupy intersecting [start,end)
// windows in the same committee, date and session.
func (a *Assignment) Overlaps(b *Assignment) bool {
	if a.CommitteeCode != b.CommitteeCode || a.Session != b.Session {
		return false
	}
	if !sameDay(a.Date, b.Date) {
		return false
	}
	return a.StartMinutes < b.EndMinutes && b.StartMinutes < a.EndMinutes
}

// Before orders assignments by (date, start), breaking ties on the lower
// topic code.
func (a *Assignment) Before(b *Assignment) bool {
	ad, bd := dayOf(a.Date), dayOf(b.Date)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	if a.StartMinutes != b.StartMinutes {
		return a.StartMinutes < b.StartMinutes
	}
	return a.TopicCode < b.TopicCode
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
