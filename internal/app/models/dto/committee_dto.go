package dto

// CreateCommitteeRequest creates a new Draft committee
type CreateCommitteeRequest struct {
	Code        string   `json:"code" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Room        string   `json:"room"`
	DefenseDate string   `json:"defense_date" binding:"required"` // "2006-01-02"
	Tags        []string `json:"tags"`
}

// AddMemberRequest adds a lecturer to a committee
type AddMemberRequest struct {
	LecturerCode string `json:"lecturer_code" binding:"required"`
	Role         string `json:"role"`
	IsChair      bool   `json:"is_chair"`
}

// TransitionRequest moves a committee to a new lifecycle status
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// ValidationResultResponse reports the outcome of a committee validation
type ValidationResultResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}
