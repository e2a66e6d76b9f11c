package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// In-memory repositories with the same semantics as the pgx ones, mutexed
// so the concurrency tests exercise the same atomicity guarantees.

type mockLecturerRepo struct {
	mu        sync.Mutex
	lecturers map[string]*models.Lecturer
	ledger    map[[2]string]int // (code, ref) -> units
}

func newMockLecturerRepo() *mockLecturerRepo {
	return &mockLecturerRepo{
		lecturers: make(map[string]*models.Lecturer),
		ledger:    make(map[[2]string]int),
	}
}

func (m *mockLecturerRepo) Create(_ context.Context, lecturer *models.Lecturer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lecturers[lecturer.Code]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	m.lecturers[lecturer.Code] = lecturer
	return nil
}

func (m *mockLecturerRepo) GetByCode(_ context.Context, code string) (*models.Lecturer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lecturers[code]
	if !ok {
		return nil, apperrors.ErrLecturerNotFound
	}
	clone := *l
	return &clone, nil
}

func (m *mockLecturerRepo) List(_ context.Context, offset uint64, limit int) ([]*models.Lecturer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Lecturer
	for _, l := range m.lecturers {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockLecturerRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lecturers)), nil
}

func (m *mockLecturerRepo) ReserveLoad(_ context.Context, code, ref string, units int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lecturers[code]
	if !ok {
		return false, apperrors.ErrLecturerNotFound
	}
	key := [2]string{code, ref}
	if _, held := m.ledger[key]; held {
		return false, nil
	}
	if l.DefenseQuota > 0 && l.CurrentDefenseLoad+units > l.DefenseQuota {
		return false, apperrors.ErrQuotaExceeded
	}
	m.ledger[key] = units
	l.CurrentDefenseLoad += units
	return true, nil
}

func (m *mockLecturerRepo) ReleaseLoad(_ context.Context, code, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{code, ref}
	units, held := m.ledger[key]
	if !held {
		return false, nil
	}
	delete(m.ledger, key)
	if l, ok := m.lecturers[code]; ok {
		l.CurrentDefenseLoad -= units
		if l.CurrentDefenseLoad < 0 {
			l.CurrentDefenseLoad = 0
		}
	}
	return true, nil
}

type mockCommitteeRepo struct {
	mu         sync.Mutex
	nextID     int64
	committees map[string]*models.Committee
}

func newMockCommitteeRepo() *mockCommitteeRepo {
	return &mockCommitteeRepo{committees: make(map[string]*models.Committee)}
}

func (m *mockCommitteeRepo) Create(_ context.Context, committee *models.Committee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.committees[committee.Code]; ok {
		return apperrors.ErrCommitteeAlreadyExists
	}
	m.nextID++
	committee.ID = m.nextID
	m.committees[committee.Code] = committee
	return nil
}

func (m *mockCommitteeRepo) GetByCode(_ context.Context, code string) (*models.Committee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.committees[code]
	if !ok || c.DeletedAt != nil {
		return nil, apperrors.ErrCommitteeNotFound
	}
	clone := *c
	clone.Members = append([]*models.CommitteeMember(nil), c.Members...)
	return &clone, nil
}

func (m *mockCommitteeRepo) List(_ context.Context, offset uint64, limit int) ([]*models.Committee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Committee
	for _, c := range m.committees {
		if c.DeletedAt == nil {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].DefenseDate.Equal(all[j].DefenseDate) {
			return all[i].DefenseDate.Before(all[j].DefenseDate)
		}
		return all[i].Code < all[j].Code
	})
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockCommitteeRepo) ListOpen(_ context.Context, date *time.Time) ([]*models.Committee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []*models.Committee
	for _, c := range m.committees {
		if c.DeletedAt != nil {
			continue
		}
		if c.Status != models.CommitteeDraft && c.Status != models.CommitteeScheduled {
			continue
		}
		if date != nil && !c.DefenseDate.Equal(*date) {
			continue
		}
		open = append(open, c)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Code < open[j].Code })
	return open, nil
}

func (m *mockCommitteeRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.committees {
		if c.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockCommitteeRepo) AddMember(_ context.Context, member *models.CommitteeMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.committees {
		if c.ID != member.CommitteeID {
			continue
		}
		for _, existing := range c.Members {
			if existing.LecturerCode == member.LecturerCode {
				return apperrors.ErrDuplicateMember
			}
		}
		if member.IsChair {
			for _, existing := range c.Members {
				existing.IsChair = false
			}
		}
		c.Members = append(c.Members, member)
		return nil
	}
	return apperrors.ErrCommitteeNotFound
}

func (m *mockCommitteeRepo) RemoveMember(_ context.Context, committeeID int64, lecturerCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.committees {
		if c.ID != committeeID {
			continue
		}
		for i, existing := range c.Members {
			if existing.LecturerCode == lecturerCode {
				c.Members = append(c.Members[:i], c.Members[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	}
	return false, apperrors.ErrCommitteeNotFound
}

func (m *mockCommitteeRepo) UpdateStatus(_ context.Context, code string, from, to models.CommitteeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.committees[code]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrCommitteeNotFound
	}
	if c.Status != from {
		return apperrors.ErrInvalidTransition
	}
	c.Status = to
	return nil
}

func (m *mockCommitteeRepo) SoftDelete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.committees[code]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrCommitteeNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

type mockTopicRepo struct {
	mu     sync.Mutex
	topics map[string]*models.Topic
}

func newMockTopicRepo() *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*models.Topic)}
}

func (m *mockTopicRepo) add(topic *models.Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[topic.Code] = topic
}

func (m *mockTopicRepo) GetByCode(_ context.Context, code string) (*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[code]
	if !ok {
		return nil, apperrors.ErrTopicNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockTopicRepo) ListDefensible(_ context.Context) ([]*models.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Topic
	for _, t := range m.topics {
		if t.Status.Defensible() && t.Assignment == nil {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type mockAssignmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	assignments []*models.Assignment
	topics      *mockTopicRepo // keeps topic.Assignment in sync like the SQL hydration does
}

func newMockAssignmentRepo(topics *mockTopicRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{topics: topics}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Overlap is detected before the topic uniqueness violation, matching
	// the SQL repository's check order.
	for _, existing := range m.assignments {
		if existing.Overlaps(assignment) {
			return apperrors.ErrSlotOverlap
		}
	}
	for _, existing := range m.assignments {
		if existing.TopicCode == assignment.TopicCode {
			return apperrors.ErrAlreadyAssigned
		}
	}
	m.nextID++
	assignment.ID = m.nextID
	m.assignments = append(m.assignments, assignment)
	if m.topics != nil {
		m.topics.mu.Lock()
		if t, ok := m.topics.topics[assignment.TopicCode]; ok {
			t.Assignment = assignment
		}
		m.topics.mu.Unlock()
	}
	return nil
}

func (m *mockAssignmentRepo) DeleteByTopic(_ context.Context, topicCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.assignments {
		if existing.TopicCode == topicCode {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			if m.topics != nil {
				m.topics.mu.Lock()
				if t, ok := m.topics.topics[topicCode]; ok {
					t.Assignment = nil
				}
				m.topics.mu.Unlock()
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) GetByTopic(_ context.Context, topicCode string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.TopicCode == topicCode {
			return existing, nil
		}
	}
	return nil, nil
}

func (m *mockAssignmentRepo) ListByCommittee(_ context.Context, committeeCode string) ([]*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Assignment
	for _, existing := range m.assignments {
		if existing.CommitteeCode == committeeCode {
			out = append(out, existing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (m *mockAssignmentRepo) ListByDate(_ context.Context, date time.Time) ([]*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Assignment
	for _, existing := range m.assignments {
		if existing.Date.Equal(date) {
			out = append(out, existing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (m *mockAssignmentRepo) ExistsByCommittee(_ context.Context, committeeCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.CommitteeCode == committeeCode {
			return true, nil
		}
	}
	return false, nil
}

type mockTagRepo struct {
	tags []*models.Tag
}

func (m *mockTagRepo) GetAll(_ context.Context) ([]*models.Tag, error) {
	return m.tags, nil
}

// testDefenseConfig is the rule set used across the service tests: quorum
// of four, doctoral chair, 45-minute slots.
func testDefenseConfig() DefenseConfig {
	return DefenseConfig{
		Quorum:      4,
		ChairRanks:  []models.AcademicRank{models.RankPhD, models.RankAssociateProfessor, models.RankProfessor},
		SlotMinutes: 45,
		Windows: map[models.Session]SessionWindow{
			models.SessionMorning:   {Start: 8 * 60, End: 11*60 + 30},
			models.SessionAfternoon: {Start: 13*60 + 30, End: 17 * 60},
		},
	}
}
