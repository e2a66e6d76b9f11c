package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
	"github.com/vuhoang/defcom/internal/pkg/dberrors"
)

// ErrMemberNotFound is returned when a lecturer is not a member of the
// committee.
var ErrMemberNotFound = errors.New("committee member not found")

// CommitteeRepository handles database operations for committees and their
// members.
type CommitteeRepository struct {
	db *pgxpool.Pool
}

// NewCommitteeRepository creates a new committee repository
func NewCommitteeRepository(db *pgxpool.Pool) *CommitteeRepository {
	return &CommitteeRepository{
		db: db,
	}
}

// Create inserts a new Draft committee with its specialty tags
func (r *CommitteeRepository) Create(ctx context.Context, committee *models.Committee) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO committees (code, name, room, defense_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		committee.Code, committee.Name, committee.Room,
		committee.DefenseDate, committee.Status,
	).Scan(&committee.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "committees_code_key") {
			return apperrors.ErrCommitteeAlreadyExists
		}
		return fmt.Errorf("error creating committee: %w", err)
	}

	for _, tag := range committee.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO committee_tags (committee_code, tag_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			committee.Code, tag); err != nil {
			return fmt.Errorf("error attaching committee tag: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByCode retrieves a committee by code with its tags and members
func (r *CommitteeRepository) GetByCode(ctx context.Context, code string) (*models.Committee, error) {
	query := `
		SELECT id, code, name, room, defense_date, status, deleted_at
		FROM committees
		WHERE code = $1 AND deleted_at IS NULL
	`

	var committee models.Committee
	err := r.db.QueryRow(ctx, query, code).Scan(
		&committee.ID,
		&committee.Code,
		&committee.Name,
		&committee.Room,
		&committee.DefenseDate,
		&committee.Status,
		&committee.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommitteeNotFound
		}
		return nil, fmt.Errorf("error retrieving committee: %w", err)
	}

	if err := r.loadTags(ctx, &committee); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, &committee); err != nil {
		return nil, err
	}

	return &committee, nil
}

// List retrieves one page of committees ordered by defense date then code
func (r *CommitteeRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Committee, error) {
	query := `
		SELECT id, code, name, room, defense_date, status, deleted_at
		FROM committees
		WHERE deleted_at IS NULL
		ORDER BY defense_date, code
		OFFSET $1 LIMIT $2
	`
	return r.queryCommittees(ctx, query, offset, limit)
}

// ListOpen retrieves all non-deleted committees in Draft or Scheduled
// status, optionally restricted to a defense date, ordered by defense date
// then code.
func (r *CommitteeRepository) ListOpen(ctx context.Context, date *time.Time) ([]*models.Committee, error) {
	query := `
		SELECT id, code, name, room, defense_date, status, deleted_at
		FROM committees
		WHERE deleted_at IS NULL
		  AND status IN ('DRAFT', 'SCHEDULED')
		  AND ($1::date IS NULL OR defense_date = $1::date)
		ORDER BY defense_date, code
	`
	return r.queryCommittees(ctx, query, date)
}

// Count returns the number of non-deleted committees
func (r *CommitteeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM committees WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting committees: %w", err)
	}
	return count, nil
}

// AddMember appends a member to a committee. When the new member is chair,
// the previous chair is unset in the same transaction so the exactly-one-
// chair invariant holds before and after.
func (r *CommitteeRepository) AddMember(ctx context.Context, member *models.CommitteeMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if member.IsChair {
		if _, err := tx.Exec(ctx,
			`UPDATE committee_members SET is_chair = FALSE WHERE committee_id = $1 AND is_chair`,
			member.CommitteeID); err != nil {
			return fmt.Errorf("error unsetting previous chair: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO committee_members (committee_id, lecturer_code, role, is_chair)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		member.CommitteeID, member.LecturerCode, member.Role, member.IsChair,
	).Scan(&member.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "committee_members_committee_id_lecturer_code_key") {
			return apperrors.ErrDuplicateMember
		}
		return fmt.Errorf("error adding committee member: %w", err)
	}

	return tx.Commit(ctx)
}

// RemoveMember deletes a member from a committee. Returns false when the
// lecturer was not a member.
func (r *CommitteeRepository) RemoveMember(ctx context.Context, committeeID int64, lecturerCode string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM committee_members WHERE committee_id = $1 AND lecturer_code = $2`,
		committeeID, lecturerCode)
	if err != nil {
		return false, fmt.Errorf("error removing committee member: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// UpdateStatus moves a committee from one status to another with a
// conditional update; a concurrent transition loses the race and gets
// ErrInvalidTransition.
func (r *CommitteeRepository) UpdateStatus(ctx context.Context, code string, from, to models.CommitteeStatus) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE committees
		SET status = $3
		WHERE code = $1 AND status = $2 AND deleted_at IS NULL`,
		code, from, to)
	if err != nil {
		return fmt.Errorf("error updating committee status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM committees WHERE code = $1 AND deleted_at IS NULL)`,
			code).Scan(&exists); err != nil {
			return fmt.Errorf("error checking committee existence: %w", err)
		}
		if !exists {
			return apperrors.ErrCommitteeNotFound
		}
		return apperrors.ErrInvalidTransition
	}

	return nil
}

// SoftDelete marks a committee deleted. The guard refuses committees that
// still have scheduled assignments.
func (r *CommitteeRepository) SoftDelete(ctx context.Context, code string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE committees
		SET deleted_at = NOW()
		WHERE code = $1
		  AND deleted_at IS NULL
		  AND NOT EXISTS (SELECT 1 FROM assignments WHERE committee_code = $1)`,
		code)
	if err != nil {
		return fmt.Errorf("error deleting committee: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM committees WHERE code = $1 AND deleted_at IS NULL)`,
			code).Scan(&exists); err != nil {
			return fmt.Errorf("error checking committee existence: %w", err)
		}
		if !exists {
			return apperrors.ErrCommitteeNotFound
		}
		return apperrors.ErrHasActiveAssignments
	}

	return nil
}

// queryCommittees runs a committee listing query and hydrates tags and
// members for each row.
func (r *CommitteeRepository) queryCommittees(ctx context.Context, query string, args ...interface{}) ([]*models.Committee, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var committees []*models.Committee
	for rows.Next() {
		var committee models.Committee
		if err := rows.Scan(
			&committee.ID,
			&committee.Code,
			&committee.Name,
			&committee.Room,
			&committee.DefenseDate,
			&committee.Status,
			&committee.DeletedAt,
		); err != nil {
			return nil, err
		}
		committees = append(committees, &committee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, committee := range committees {
		if err := r.loadTags(ctx, committee); err != nil {
			return nil, err
		}
		if err := r.loadMembers(ctx, committee); err != nil {
			return nil, err
		}
	}

	return committees, nil
}

func (r *CommitteeRepository) loadTags(ctx context.Context, committee *models.Committee) error {
	rows, err := r.db.Query(ctx,
		`SELECT tag_code FROM committee_tags WHERE committee_code = $1 ORDER BY tag_code`,
		committee.Code)
	if err != nil {
		return fmt.Errorf("error retrieving committee tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	committee.Tags = tags
	return rows.Err()
}

func (r *CommitteeRepository) loadMembers(ctx context.Context, committee *models.Committee) error {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.committee_id, m.lecturer_code, m.role, m.is_chair,
		       l.id, l.code, l.full_name, l.rank, l.defense_quota, l.current_defense_load
		FROM committee_members m
		JOIN lecturers l ON l.code = m.lecturer_code
		WHERE m.committee_id = $1
		ORDER BY m.id`,
		committee.ID)
	if err != nil {
		return fmt.Errorf("error retrieving committee members: %w", err)
	}
	defer rows.Close()

	var members []*models.CommitteeMember
	for rows.Next() {
		var member models.CommitteeMember
		var lecturer models.Lecturer
		if err := rows.Scan(
			&member.ID, &member.CommitteeID, &member.LecturerCode, &member.Role, &member.IsChair,
			&lecturer.ID, &lecturer.Code, &lecturer.FullName, &lecturer.Rank,
			&lecturer.DefenseQuota, &lecturer.CurrentDefenseLoad,
		); err != nil {
			return err
		}
		member.Lecturer = &lecturer
		members = append(members, &member)
	}
	committee.Members = members
	return rows.Err()
}
