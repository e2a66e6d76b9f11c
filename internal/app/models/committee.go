package models

import "time"

// Committee is a panel of lecturers convened to judge thesis defenses on a
// given date.
type Committee struct {
	ID          int64              `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Room        string             `json:"room"`
	DefenseDate time.Time          `json:"defense_date"`
	Tags        []string           `json:"tags"`
	Status      CommitteeStatus    `json:"status"`
	Members     []*CommitteeMember `json:"members,omitempty"`
	DeletedAt   *time.Time         `json:"deleted_at,omitempty"`
}

// CommitteeMember links a lecturer into a committee. At most one member per
// committee has IsChair set; assigning a new chair unsets the previous one
// in the same operation.
type CommitteeMember struct {
	ID           int64     `json:"id"`
	CommitteeID  int64     `json:"committee_id"`
	LecturerCode string    `json:"lecturer_code"`
	Role         string    `json:"role"`
	IsChair      bool      `json:"is_chair"`
	Lecturer     *Lecturer `json:"lecturer,omitempty"`
}

// HasMember reports whether the lecturer already sits on the committee.
// Matching is by lecturer code, never by display name.
func (c *Committee) HasMember(lecturerCode string) bool {
	for _, m := range c.Members {
		if m.LecturerCode == lecturerCode {
			return true
		}
	}
	return false
}

// Chair returns the current chair, or nil.
func (c *Committee) Chair() *CommitteeMember {
	for _, m := range c.Members {
		if m.IsChair {
			return m
		}
	}
	return nil
}

// MatchesTags reports whether the committee's specialty tag set admits a
// topic with the given tags. An empty committee tag set matches everything.
func (c *Committee) MatchesTags(topicTags []string) bool {
	if len(c.Tags) == 0 {
		return true
	}
	for _, ct := range c.Tags {
		for _, tt := range topicTags {
			if ct == tt {
				return true
			}
		}
	}
	return false
}

// committee status transitions; Cancelled is terminal and reachable only
// from Draft or Scheduled
var committeeTransitions = map[CommitteeStatus][]CommitteeStatus{
	CommitteeDraft:     {CommitteeScheduled, CommitteeCancelled},
	CommitteeScheduled: {CommitteeActive, CommitteeCancelled},
	CommitteeActive:    {CommitteeCompleted},
}

// CanTransition reports whether the status change is allowed by the
// committee lifecycle.
func CanTransition(from, to CommitteeStatus) bool {
	for _, s := range committeeTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
