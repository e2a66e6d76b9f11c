package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

// LecturerRepository handles database operations for lecturers, including
// the atomic defense-load accounting.
type LecturerRepository struct {
	db *pgxpool.Pool
}

// NewLecturerRepository creates a new lecturer repository
func NewLecturerRepository(db *pgxpool.Pool) *LecturerRepository {
	return &LecturerRepository{
		db: db,
	}
}

// Create inserts a new lecturer with their specialty tags
func (r *LecturerRepository) Create(ctx context.Context, lecturer *models.Lecturer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO lecturers (code, full_name, rank, defense_quota, current_defense_load)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		lecturer.Code, lecturer.FullName, lecturer.Rank,
		lecturer.DefenseQuota, lecturer.CurrentDefenseLoad,
	).Scan(&lecturer.ID)
	if err != nil {
		return fmt.Errorf("error creating lecturer: %w", err)
	}

	for _, tag := range lecturer.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO lecturer_tags (lecturer_code, tag_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			lecturer.Code, tag); err != nil {
			return fmt.Errorf("error attaching lecturer tag: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByCode retrieves a lecturer by code, with specialty tags
func (r *LecturerRepository) GetByCode(ctx context.Context, code string) (*models.Lecturer, error) {
	query := `
		SELECT id, code, full_name, rank, defense_quota, current_defense_load
		FROM lecturers
		WHERE code = $1
	`

	var lecturer models.Lecturer
	err := r.db.QueryRow(ctx, query, code).Scan(
		&lecturer.ID,
		&lecturer.Code,
		&lecturer.FullName,
		&lecturer.Rank,
		&lecturer.DefenseQuota,
		&lecturer.CurrentDefenseLoad,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLecturerNotFound
		}
		return nil, fmt.Errorf("error retrieving lecturer: %w", err)
	}

	tags, err := r.tagsFor(ctx, lecturer.Code)
	if err != nil {
		return nil, err
	}
	lecturer.Tags = tags

	return &lecturer, nil
}

// List retrieves one page of lecturers ordered by code
func (r *LecturerRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Lecturer, error) {
	query := `
		SELECT id, code, full_name, rank, defense_quota, current_defense_load
		FROM lecturers
		ORDER BY code
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lecturers []*models.Lecturer
	for rows.Next() {
		var lecturer models.Lecturer
		if err := rows.Scan(
			&lecturer.ID,
			&lecturer.Code,
			&lecturer.FullName,
			&lecturer.Rank,
			&lecturer.DefenseQuota,
			&lecturer.CurrentDefenseLoad,
		); err != nil {
			return nil, err
		}
		lecturers = append(lecturers, &lecturer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, lecturer := range lecturers {
		tags, err := r.tagsFor(ctx, lecturer.Code)
		if err != nil {
			return nil, err
		}
		lecturer.Tags = tags
	}

	return lecturers, nil
}

// Count returns the number of lecturers
func (r *LecturerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lecturers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting lecturers: %w", err)
	}
	return count, nil
}

// ReserveLoad atomically reserves defense capacity for a lecturer. The
// reservation is recorded in the load ledger under ref so it can be released
// exactly once. Reserving an already-held ref is a no-op reported as
// false, so the caller knows it does not own the reservation. Fails with
// ErrQuotaExceeded without side effects when the lecturer lacks headroom.
func (r *LecturerRepository) ReserveLoad(ctx context.Context, code, ref string, units int) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ledger, err := tx.Exec(ctx, `
		INSERT INTO lecturer_load_ledger (lecturer_code, ref, units)
		VALUES ($1, $2, $3)
		ON CONFLICT (lecturer_code, ref) DO NOTHING`,
		code, ref, units)
	if err != nil {
		return false, fmt.Errorf("error writing load ledger: %w", err)
	}
	if ledger.RowsAffected() == 0 {
		// ref already reserved; nothing more to do
		return false, tx.Commit(ctx)
	}

	// The conditional update is the single atomic check-and-increment: two
	// racing reservations cannot both pass when only one unit remains.
	cmdTag, err := tx.Exec(ctx, `
		UPDATE lecturers
		SET current_defense_load = current_defense_load + $2
		WHERE code = $1
		  AND (defense_quota = 0 OR current_defense_load + $2 <= defense_quota)`,
		code, units)
	if err != nil {
		return false, fmt.Errorf("error reserving lecturer load: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM lecturers WHERE code = $1)`, code).Scan(&exists); err != nil {
			return false, fmt.Errorf("error checking lecturer existence: %w", err)
		}
		if !exists {
			return false, apperrors.ErrLecturerNotFound
		}
		return false, apperrors.ErrQuotaExceeded
	}

	return true, tx.Commit(ctx)
}

// ReleaseLoad releases a reservation previously made under ref. Returns
// false when no such reservation exists, which makes double-release a no-op.
func (r *LecturerRepository) ReleaseLoad(ctx context.Context, code, ref string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var units int
	err = tx.QueryRow(ctx, `
		DELETE FROM lecturer_load_ledger
		WHERE lecturer_code = $1 AND ref = $2
		RETURNING units`,
		code, ref).Scan(&units)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error releasing load ledger entry: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE lecturers
		SET current_defense_load = GREATEST(current_defense_load - $2, 0)
		WHERE code = $1`,
		code, units)
	if err != nil {
		return false, fmt.Errorf("error releasing lecturer load: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// tagsFor loads the specialty tag codes of a lecturer
func (r *LecturerRepository) tagsFor(ctx context.Context, code string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tag_code FROM lecturer_tags WHERE lecturer_code = $1 ORDER BY tag_code`, code)
	if err != nil {
		return nil, fmt.Errorf("error retrieving lecturer tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
