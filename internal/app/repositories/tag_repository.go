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

// TagRepository reads the specialty tag catalog. The catalog itself is
// owned by an external collaborator; this repository only mirrors it.
type TagRepository struct {
	db *pgxpool.Pool
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *pgxpool.Pool) *TagRepository {
	return &TagRepository{
		db: db,
	}
}

// Create inserts a tag if it does not already exist (used by seeding)
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tags (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		tag.Code, tag.Name).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("error creating tag: %w", err)
	}
	return nil
}

// GetByCode retrieves a tag by code
func (r *TagRepository) GetByCode(ctx context.Context, code string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name FROM tags WHERE code = $1`, code).Scan(
		&tag.ID, &tag.Code, &tag.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, fmt.Errorf("error retrieving tag: %w", err)
	}
	return &tag, nil
}

// GetAll retrieves the full tag catalog ordered by code
func (r *TagRepository) GetAll(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name FROM tags ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Code, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}
