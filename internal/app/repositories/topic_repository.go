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

// TopicRepository handles database operations for thesis topics. The engine
// reads topics as snapshots; topic status write-back belongs to the
// surrounding service.
type TopicRepository struct {
	db *pgxpool.Pool
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{
		db: db,
	}
}

// Create inserts a new topic with its specialty tags
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO topics (code, title, status, supervisor_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		topic.Code, topic.Title, topic.Status, topic.SupervisorCode,
	).Scan(&topic.ID)
	if err != nil {
		return fmt.Errorf("error creating topic: %w", err)
	}

	for _, tag := range topic.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO topic_tags (topic_code, tag_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			topic.Code, tag); err != nil {
			return fmt.Errorf("error attaching topic tag: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByCode retrieves a topic by code with its tags and assignment, if any
func (r *TopicRepository) GetByCode(ctx context.Context, code string) (*models.Topic, error) {
	query := `
		SELECT id, code, title, status, supervisor_code
		FROM topics
		WHERE code = $1
	`

	var topic models.Topic
	err := r.db.QueryRow(ctx, query, code).Scan(
		&topic.ID,
		&topic.Code,
		&topic.Title,
		&topic.Status,
		&topic.SupervisorCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTopicNotFound
		}
		return nil, fmt.Errorf("error retrieving topic: %w", err)
	}

	if err := r.hydrate(ctx, &topic); err != nil {
		return nil, err
	}

	return &topic, nil
}

// ListDefensible retrieves all approved topics that have no assignment yet,
// with their tags, ordered by topic code.
func (r *TopicRepository) ListDefensible(ctx context.Context) ([]*models.Topic, error) {
	query := `
		SELECT t.id, t.code, t.title, t.status, t.supervisor_code
		FROM topics t
		WHERE t.status = $1
		  AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.topic_code = t.code)
		ORDER BY t.code
	`

	rows, err := r.db.Query(ctx, query, models.TopicApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*models.Topic
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(
			&topic.ID,
			&topic.Code,
			&topic.Title,
			&topic.Status,
			&topic.SupervisorCode,
		); err != nil {
			return nil, err
		}
		topics = append(topics, &topic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, topic := range topics {
		tags, err := r.tagsFor(ctx, topic.Code)
		if err != nil {
			return nil, err
		}
		topic.Tags = tags
	}

	return topics, nil
}

// hydrate loads tags and the current assignment of a topic
func (r *TopicRepository) hydrate(ctx context.Context, topic *models.Topic) error {
	tags, err := r.tagsFor(ctx, topic.Code)
	if err != nil {
		return err
	}
	topic.Tags = tags

	var assignment models.Assignment
	err = r.db.QueryRow(ctx, `
		SELECT id, topic_code, committee_code, session, date, start_minutes, end_minutes
		FROM assignments
		WHERE topic_code = $1`,
		topic.Code,
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
			return nil
		}
		return fmt.Errorf("error retrieving topic assignment: %w", err)
	}
	topic.Assignment = &assignment
	return nil
}

func (r *TopicRepository) tagsFor(ctx context.Context, code string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tag_code FROM topic_tags WHERE topic_code = $1 ORDER BY tag_code`, code)
	if err != nil {
		return nil, fmt.Errorf("error retrieving topic tags: %w", err)
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
