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

// AssignmentRepository handles database operations for topic assignments.
// The storage boundary enforces the hard invariants: the unique index on
// topic_code, and slot-overlap checking serialized by locking the committee
// row inside one transaction.
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
	}
}

// Create persists an assignment. Concurrent inserts into the same
// committee+date+session are serialized by a row lock on the committee, so
// the overlap check and the insert are atomic with respect to each other.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var committeeID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM committees WHERE code = $1 AND deleted_at IS NULL FOR UPDATE`,
		assignment.CommitteeCode).Scan(&committeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCommitteeNotFound
		}
		return fmt.Errorf("error locking committee: %w", err)
	}

	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE committee_code = $1 AND date = $2 AND session = $3
			  AND start_minutes < $5 AND $4 < end_minutes
		)`,
		assignment.CommitteeCode, assignment.Date, assignment.Session,
		assignment.StartMinutes, assignment.EndMinutes,
	).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("error checking slot overlap: %w", err)
	}
	if overlaps {
		return apperrors.ErrSlotOverlap
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO assignments (topic_code, committee_code, session, date, start_minutes, end_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		assignment.TopicCode, assignment.CommitteeCode, assignment.Session,
		assignment.Date, assignment.StartMinutes, assignment.EndMinutes,
	).Scan(&assignment.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "assignments_topic_code_key") {
			return apperrors.ErrAlreadyAssigned
		}
		return fmt.Errorf("error creating assignment: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteByTopic removes the assignment of a topic. Returns false when the
// topic had none, making unassignment idempotent.
func (r *AssignmentRepository) DeleteByTopic(ctx context.Context, topicCode string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM assignments WHERE topic_code = $1`, topicCode)
	if err != nil {
		return false, fmt.Errorf("error deleting assignment: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// GetByTopic retrieves a topic's assignment, or nil when none exists
func (r *AssignmentRepository) GetByTopic(ctx context.Context, topicCode string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.QueryRow(ctx, `
		SELECT id, topic_code, committee_code, session, date, start_minutes, end_minutes
		FROM assignments
		WHERE topic_code = $1`,
		topicCode,
	).Scan(
		&assignment.ID,
		&assignment.TopicCode,
		&assignment.CommitteeCode,
		&assignment.Session,
		&assignment.Date,
		&assignment.StartMinutes,
		&assignment.EndMinutes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return &assignment, nil
}

// ListByCommittee retrieves a committee's assignments ordered by date,
// start time and topic code.
func (r *AssignmentRepository) ListByCommittee(ctx context.Context, committeeCode string) ([]*models.Assignment, error) {
	query := `
		SELECT id, topic_code, committee_code, session, date, start_minutes, end_minutes
		FROM assignments
		WHERE committee_code = $1
		ORDER BY date, start_minutes, topic_code
	`
	return r.queryAssignments(ctx, query, committeeCode)
}

// ListByDate retrieves all assignments on a defense date, ordered by
// committee code, start time and topic code.
func (r *AssignmentRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Assignment, error) {
	query := `
		SELECT id, topic_code, committee_code, session, date, start_minutes, end_minutes
		FROM assignments
		WHERE date = $1
		ORDER BY committee_code, start_minutes, topic_code
	`
	return r.queryAssignments(ctx, query, date)
}

// ExistsByCommittee reports whether a committee has any assignments
func (r *AssignmentRepository) ExistsByCommittee(ctx context.Context, committeeCode string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM assignments WHERE committee_code = $1)`,
		committeeCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking committee assignments: %w", err)
	}
	return exists, nil
}

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]*models.Assignment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TopicCode,
			&assignment.CommitteeCode,
			&assignment.Session,
			&assignment.Date,
			&assignment.StartMinutes,
			&assignment.EndMinutes,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, &assignment)
	}
	return assignments, rows.Err()
}
