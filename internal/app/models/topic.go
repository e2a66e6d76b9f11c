package models

// Topic represents a thesis topic read from the topic directory. The engine
// never mutates topic status; the surrounding service writes back
// "scheduled" after a successful assignment.
type Topic struct {
	ID             int64       `json:"id"`
	Code           string      `json:"code"`
	Title          string      `json:"title"`
	Status         TopicStatus `json:"status"`
	SupervisorCode string      `json:"supervisor_code"`
	Tags           []string    `json:"tags"`
	Assignment     *Assignment `json:"assignment,omitempty"`
}

// Tag is a specialty tag from the read-only catalog, used for matching
// topics to committees.
type Tag struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
