package services

import (
	"context"
	"time"

	"github.com/vuhoang/defcom/internal/app/models"
)

// Repository interfaces consumed by the services. The pgx repositories in
// internal/app/repositories satisfy them; tests substitute in-memory mocks.

// LecturerRepository reads the lecturer directory and owns the atomic
// defense-load accounting.
type LecturerRepository interface {
	Create(ctx context.Context, lecturer *models.Lecturer) error
	GetByCode(ctx context.Context, code string) (*models.Lecturer, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.Lecturer, error)
	Count(ctx context.Context) (int64, error)
	// ReserveLoad atomically increments the lecturer's load if headroom
	// allows, recording the reservation under ref. Reserving a held ref is
	// a no-op reported as false; exceeding quota fails without side
	// effects.
	ReserveLoad(ctx context.Context, code, ref string, units int) (bool, error)
	// ReleaseLoad undoes the reservation held under ref. Returns false when
	// no such reservation exists.
	ReleaseLoad(ctx context.Context, code, ref string) (bool, error)
}

// CommitteeRepository persists committees and their members.
type CommitteeRepository interface {
	Create(ctx context.Context, committee *models.Committee) error
	GetByCode(ctx context.Context, code string) (*models.Committee, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.Committee, error)
	ListOpen(ctx context.Context, date *time.Time) ([]*models.Committee, error)
	Count(ctx context.Context) (int64, error)
	AddMember(ctx context.Context, member *models.CommitteeMember) error
	RemoveMember(ctx context.Context, committeeID int64, lecturerCode string) (bool, error)
	UpdateStatus(ctx context.Context, code string, from, to models.CommitteeStatus) error
	SoftDelete(ctx context.Context, code string) error
}

// TopicRepository reads topic snapshots from the topic directory.
type TopicRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Topic, error)
	ListDefensible(ctx context.Context) ([]*models.Topic, error)
}

// AssignmentRepository persists topic assignments. Create is atomic with
// respect to other assignments of the same committee slot and rejects a
// second assignment for a topic.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	DeleteByTopic(ctx context.Context, topicCode string) (bool, error)
	GetByTopic(ctx context.Context, topicCode string) (*models.Assignment, error)
	ListByCommittee(ctx context.Context, committeeCode string) ([]*models.Assignment, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.Assignment, error)
	ExistsByCommittee(ctx context.Context, committeeCode string) (bool, error)
}

// TagRepository reads the specialty tag catalog.
type TagRepository interface {
	GetAll(ctx context.Context) ([]*models.Tag, error)
}

// SessionWindow is the scheduling window of one session within a defense
// date, in minutes since midnight.
type SessionWindow struct {
	Start int
	End   int
}

// DefenseConfig carries the committee formation and scheduling rules.
type DefenseConfig struct {
	Quorum      int
	ChairRanks  []models.AcademicRank
	SlotMinutes int
	Windows     map[models.Session]SessionWindow
}

// ChairEligible reports whether the rank qualifies for chairing a committee.
func (c DefenseConfig) ChairEligible(rank models.AcademicRank) bool {
	for _, r := range c.ChairRanks {
		if r == rank {
			return true
		}
	}
	return false
}
