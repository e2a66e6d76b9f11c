package models

import "math"

// Lecturer represents a lecturer in the faculty directory. The quota fields
// track defense-committee commitments: CurrentDefenseLoad is mutated only by
// the quota tracker's conditional update.
type Lecturer struct {
	ID                 int64        `json:"id"`
	Code               string       `json:"code"`
	FullName           string       `json:"full_name"`
	Rank               AcademicRank `json:"rank"`
	Tags               []string     `json:"tags"`
	DefenseQuota       int          `json:"defense_quota"` // 0 = unlimited
	CurrentDefenseLoad int          `json:"current_defense_load"`
}

// Headroom returns how many more defense commitments the lecturer can take.
// Unlimited quota yields MaxInt.
func (l *Lecturer) Headroom() int {
	if l.DefenseQuota <= 0 {
		return math.MaxInt
	}
	h := l.DefenseQuota - l.CurrentDefenseLoad
	if h < 0 {
		return 0
	}
	return h
}
