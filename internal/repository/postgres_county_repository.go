package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

const countyColumns = `id, slug, name, is_active, created_at, updated_at, deleted_at`

// PostgresCountyRepository implements CountyRepository using PostgreSQL
type PostgresCountyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCountyRepository creates a new PostgresCountyRepository
func NewPostgresCountyRepository(pool *pgxpool.Pool) *PostgresCountyRepository {
	return &PostgresCountyRepository{pool: pool}
}

func (r *PostgresCountyRepository) scanCounty(row pgx.Row) (*domain.County, error) {
	county := &domain.County{}
	err := row.Scan(
		&county.ID,
		&county.Slug,
		&county.Name,
		&county.IsActive,
		&county.CreatedAt,
		&county.UpdatedAt,
		&county.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return county, nil
}

// Create creates a new county
func (r *PostgresCountyRepository) Create(ctx context.Context, county *domain.County) error {
	query := `
		INSERT INTO counties (id, slug, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		county.ID,
		county.Slug,
		county.Name,
		county.IsActive,
		county.CreatedAt,
		county.UpdatedAt,
	)
	return err
}

// GetByID retrieves a county by ID
func (r *PostgresCountyRepository) GetByID(ctx context.Context, id string) (*domain.County, error) {
	query := `SELECT ` + countyColumns + ` FROM counties WHERE id = $1 AND deleted_at IS NULL`
	return r.scanCounty(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves a county by slug
func (r *PostgresCountyRepository) GetBySlug(ctx context.Context, slug string) (*domain.County, error) {
	query := `SELECT ` + countyColumns + ` FROM counties WHERE slug = $1 AND deleted_at IS NULL`
	return r.scanCounty(r.pool.QueryRow(ctx, query, slug))
}

// List retrieves counties with pagination
func (r *PostgresCountyRepository) List(ctx context.Context, page, limit int, isActive *bool) ([]*domain.County, int, error) {
	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	if isActive != nil {
		whereClause += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *isActive)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM counties %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`SELECT %s FROM counties %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		countyColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counties := make([]*domain.County, 0)
	for rows.Next() {
		county := &domain.County{}
		err := rows.Scan(
			&county.ID,
			&county.Slug,
			&county.Name,
			&county.IsActive,
			&county.CreatedAt,
			&county.UpdatedAt,
			&county.DeletedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		counties = append(counties, county)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return counties, total, nil
}

// PostgresBusinessRepository implements BusinessRepository using PostgreSQL
type PostgresBusinessRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBusinessRepository creates a new PostgresBusinessRepository
func NewPostgresBusinessRepository(pool *pgxpool.Pool) *PostgresBusinessRepository {
	return &PostgresBusinessRepository{pool: pool}
}

// Create creates a new business
func (r *PostgresBusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	query := `
		INSERT INTO businesses (id, county_id, owner_user_id, name, status, monthly_voucher_allowance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		business.ID,
		business.CountyID,
		business.OwnerUserID,
		business.Name,
		business.Status,
		business.MonthlyVoucherAllowance,
		business.CreatedAt,
		business.UpdatedAt,
	)
	return err
}

// GetByID retrieves a business within a county
func (r *PostgresBusinessRepository) GetByID(ctx context.Context, countyID, id string) (*domain.Business, error) {
	query := `
		SELECT id, county_id, owner_user_id, name, status, monthly_voucher_allowance, created_at, updated_at
		FROM businesses
		WHERE id = $1 AND county_id = $2
	`
	business := &domain.Business{}
	err := r.pool.QueryRow(ctx, query, id, countyID).Scan(
		&business.ID,
		&business.CountyID,
		&business.OwnerUserID,
		&business.Name,
		&business.Status,
		&business.MonthlyVoucherAllowance,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return business, nil
}
