package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// PostgresReviewTaskRepository implements ReviewTaskRepository using
// PostgreSQL. Tasks are durable by design: they must survive restarts and be
// visible to every instance, unlike an in-process map.
type PostgresReviewTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewTaskRepository creates a new PostgresReviewTaskRepository
func NewPostgresReviewTaskRepository(pool *pgxpool.Pool) *PostgresReviewTaskRepository {
	return &PostgresReviewTaskRepository{pool: pool}
}

// Create persists a new unresolved review task
func (r *PostgresReviewTaskRepository) Create(ctx context.Context, task *domain.ReviewTask) error {
	query := `
		INSERT INTO review_tasks (id, county_id, kind, subject_id, details, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.CountyID,
		task.Kind,
		task.SubjectID,
		task.Details,
		task.Resolved,
		task.CreatedAt,
	)
	return err
}

// List retrieves review tasks for a county
func (r *PostgresReviewTaskRepository) List(ctx context.Context, countyID string, resolved *bool, limit, offset int) ([]*domain.ReviewTask, int, error) {
	whereClause := "WHERE county_id = $1"
	args := []interface{}{countyID}
	argIndex := 2

	if resolved != nil {
		whereClause += fmt.Sprintf(" AND resolved = $%d", argIndex)
		args = append(args, *resolved)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM review_tasks %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, county_id, kind, subject_id, details, resolved, created_at
		FROM review_tasks %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*domain.ReviewTask, 0)
	for rows.Next() {
		task := &domain.ReviewTask{}
		err := rows.Scan(
			&task.ID,
			&task.CountyID,
			&task.Kind,
			&task.SubjectID,
			&task.Details,
			&task.Resolved,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Resolve marks a task resolved
func (r *PostgresReviewTaskRepository) Resolve(ctx context.Context, countyID, id string) error {
	query := `UPDATE review_tasks SET resolved = TRUE WHERE id = $1 AND county_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, countyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewTaskNotFound
	}
	return nil
}
