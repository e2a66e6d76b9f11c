package models

// AcademicRank defines a lecturer's academic rank. The rank (not a free-text
// degree string) decides chair eligibility; the eligible set is configured,
// not hard-coded.
type AcademicRank string

const (
	RankBachelor           AcademicRank = "BACHELOR"
	RankMaster             AcademicRank = "MASTER"
	RankPhD                AcademicRank = "PHD"
	RankAssociateProfessor AcademicRank = "ASSOCIATE_PROFESSOR"
	RankProfessor          AcademicRank = "PROFESSOR"
)

// legacy degree labels still found in imported lecturer records
var legacyRankLabels = map[string]AcademicRank{
	"Cử nhân":    RankBachelor,
	"Thạc sĩ":    RankMaster,
	"Tiến sĩ":    RankPhD,
	"Phó giáo sư": RankAssociateProfessor,
	"Giáo sư":     RankProfessor,
}

// ParseAcademicRank resolves a rank from either the enum value or a legacy
// degree label. Unknown input resolves to ("", false).
func ParseAcademicRank(s string) (AcademicRank, bool) {
	switch AcademicRank(s) {
	case RankBachelor, RankMaster, RankPhD, RankAssociateProfessor, RankProfessor:
		return AcademicRank(s), true
	}
	if r, ok := legacyRankLabels[s]; ok {
		return r, true
	}
	return "", false
}

// Session is a time block within a defense date.
type Session string

const (
	SessionMorning   Session = "MORNING"
	SessionAfternoon Session = "AFTERNOON"
)

// SessionOrder lists sessions in the order the planner fills them.
var SessionOrder = []Session{SessionMorning, SessionAfternoon}

// Valid reports whether s is a known session.
func (s Session) Valid() bool {
	return s == SessionMorning || s == SessionAfternoon
}

// CommitteeStatus is the committee lifecycle state.
type CommitteeStatus string

const (
	CommitteeDraft     CommitteeStatus = "DRAFT"
	CommitteeScheduled CommitteeStatus = "SCHEDULED"
	CommitteeActive    CommitteeStatus = "ACTIVE"
	CommitteeCompleted CommitteeStatus = "COMPLETED"
	CommitteeCancelled CommitteeStatus = "CANCELLED"
)

// TopicStatus is the thesis topic review state. Only approved topics are
// defensible.
type TopicStatus string

const (
	TopicDraft     TopicStatus = "DRAFT"
	TopicSubmitted TopicStatus = "SUBMITTED"
	TopicApproved  TopicStatus = "APPROVED"
	TopicRejected  TopicStatus = "REJECTED"
)

// Defensible reports whether a topic in this status may be scheduled.
func (s TopicStatus) Defensible() bool {
	return s == TopicApproved
}
