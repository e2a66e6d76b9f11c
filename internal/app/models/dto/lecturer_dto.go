package dto

// CreateLecturerRequest registers a lecturer in the directory. Rank accepts
// either the enum value or a legacy degree label.
type CreateLecturerRequest struct {
	Code         string   `json:"code" binding:"required"`
	FullName     string   `json:"full_name" binding:"required"`
	Rank         string   `json:"rank" binding:"required"`
	Tags         []string `json:"tags"`
	DefenseQuota int      `json:"defense_quota"` // 0 = unlimited
}

// HeadroomResponse reports how much defense capacity a lecturer has left
type HeadroomResponse struct {
	LecturerCode string `json:"lecturer_code"`
	Quota        int    `json:"quota"` // 0 = unlimited
	CurrentLoad  int    `json:"current_load"`
	Headroom     int    `json:"headroom"`
	Unlimited    bool   `json:"unlimited"`
}
