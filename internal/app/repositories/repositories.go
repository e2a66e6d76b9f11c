package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	LecturerRepository   *LecturerRepository
	CommitteeRepository  *CommitteeRepository
	TopicRepository      *TopicRepository
	AssignmentRepository *AssignmentRepository
	TagRepository        *TagRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		LecturerRepository:   NewLecturerRepository(db),
		CommitteeRepository:  NewCommitteeRepository(db),
		TopicRepository:      NewTopicRepository(db),
		AssignmentRepository: NewAssignmentRepository(db),
		TagRepository:        NewTagRepository(db),
	}
}
