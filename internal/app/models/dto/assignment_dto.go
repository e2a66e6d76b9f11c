package dto

// AssignRequest schedules a topic into a committee time slot. The date is
// the committee's defense date; only the session and window are chosen.
type AssignRequest struct {
	TopicCode     string `json:"topic_code" binding:"required"`
	CommitteeCode string `json:"committee_code" binding:"required"`
	Session       string `json:"session" binding:"required"`    // MORNING or AFTERNOON
	StartTime     string `json:"start_time" binding:"required"` // "HH:MM"
	EndTime       string `json:"end_time" binding:"required"`
}

// AssignmentResponse is the wire form of an assignment
type AssignmentResponse struct {
	ID            int64  `json:"id"`
	TopicCode     string `json:"topic_code"`
	CommitteeCode string `json:"committee_code"`
	Session       string `json:"session"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}
