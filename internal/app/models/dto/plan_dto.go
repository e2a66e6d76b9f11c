package dto

// PlanRequest runs the batch auto-assignment over a set of committees. An
// empty committee list means "all committees on the given date"; an empty
// date means "all open committees".
type PlanRequest struct {
	CommitteeCodes []string `json:"committee_codes"`
	Date           string   `json:"date"` // "2006-01-02", optional
}

// PlanDiagnostic records a committee the planner skipped and why
type PlanDiagnostic struct {
	CommitteeCode string `json:"committee_code"`
	Reason        string `json:"reason"`
}

// PlanResponse reports the batch assignment result per committee
type PlanResponse struct {
	PlanID      string                          `json:"plan_id"`
	Assignments map[string][]AssignmentResponse `json:"assignments"`
	Skipped     []PlanDiagnostic                `json:"skipped,omitempty"`
}
