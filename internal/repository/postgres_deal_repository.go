package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

const dealColumns = `id, county_id, business_id, title, COALESCE(description, '') as description,
	COALESCE(category, '') as category, original_value_cents, deal_price_cents,
	redeem_start, redeem_end, voucher_quantity_limit, status, guard_status,
	activated_at, last_active_at, created_at, updated_at`

// PostgresDealRepository implements DealRepository using PostgreSQL
type PostgresDealRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDealRepository creates a new PostgresDealRepository
func NewPostgresDealRepository(pool *pgxpool.Pool) *PostgresDealRepository {
	return &PostgresDealRepository{pool: pool}
}

func scanDeal(row pgx.Row) (*domain.Deal, error) {
	deal := &domain.Deal{}
	err := row.Scan(
		&deal.ID,
		&deal.CountyID,
		&deal.BusinessID,
		&deal.Title,
		&deal.Description,
		&deal.Category,
		&deal.OriginalValueCents,
		&deal.DealPriceCents,
		&deal.RedeemStart,
		&deal.RedeemEnd,
		&deal.VoucherQuantityLimit,
		&deal.Status,
		&deal.GuardStatus,
		&deal.ActivatedAt,
		&deal.LastActiveAt,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return deal, nil
}

// Create creates a new deal
func (r *PostgresDealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	query := `
		INSERT INTO deals (id, county_id, business_id, title, description, category,
			original_value_cents, deal_price_cents, redeem_start, redeem_end,
			voucher_quantity_limit, status, guard_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		deal.ID,
		deal.CountyID,
		deal.BusinessID,
		deal.Title,
		deal.Description,
		deal.Category,
		deal.OriginalValueCents,
		deal.DealPriceCents,
		deal.RedeemStart,
		deal.RedeemEnd,
		deal.VoucherQuantityLimit,
		deal.Status,
		deal.GuardStatus,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	return err
}

// GetByID retrieves a deal within a county
func (r *PostgresDealRepository) GetByID(ctx context.Context, countyID, id string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 AND county_id = $2`
	return scanDeal(r.pool.QueryRow(ctx, query, id, countyID))
}

// List retrieves deals within a county with pagination
func (r *PostgresDealRepository) List(ctx context.Context, countyID string, publicOnly bool, limit, offset int) ([]*domain.Deal, int, error) {
	whereClause := "WHERE county_id = $1"
	args := []interface{}{countyID}
	if publicOnly {
		whereClause += " AND status = 'active' AND guard_status = 'approved'"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM deals %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM deals %s ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		dealColumns, whereClause)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	deals := make([]*domain.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, 0, err
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

// Update persists edits to a deal
func (r *PostgresDealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	query := `
		UPDATE deals
		SET title = $3, description = $4, category = $5, original_value_cents = $6,
			deal_price_cents = $7, redeem_start = $8, redeem_end = $9,
			voucher_quantity_limit = $10, updated_at = $11
		WHERE id = $1 AND county_id = $2
	`
	deal.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		deal.ID,
		deal.CountyID,
		deal.Title,
		deal.Description,
		deal.Category,
		deal.OriginalValueCents,
		deal.DealPriceCents,
		deal.RedeemStart,
		deal.RedeemEnd,
		deal.VoucherQuantityLimit,
		deal.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDealNotFound
	}
	return nil
}

// UpdateGuardStatus sets the advisory guard status
func (r *PostgresDealRepository) UpdateGuardStatus(ctx context.Context, countyID, id string, status domain.GuardStatus) error {
	query := `UPDATE deals SET guard_status = $3, updated_at = NOW() WHERE id = $1 AND county_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, countyID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDealNotFound
	}
	return nil
}

// MarkExpired performs the conditional active -> expired update
func (r *PostgresDealRepository) MarkExpired(ctx context.Context, countyID, id string) error {
	query := `
		UPDATE deals
		SET status = 'expired', last_active_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND county_id = $2 AND status = 'active'
	`
	tag, err := r.pool.Exec(ctx, query, id, countyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidDealTransition
	}
	return nil
}

// ActivateWithVouchers transitions the deal to active and materializes its
// voucher inventory as one atomic unit. The conditional status update closes
// the race against a concurrent activation, and the issuance guard re-checks
// the monthly allowance under the business row lock.
func (r *PostgresDealRepository) ActivateWithVouchers(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin activation tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := guardIssuance(ctx, tx, deal, len(vouchers), from, until); err != nil {
		return err
	}

	update := `
		UPDATE deals
		SET status = $3, activated_at = $4, updated_at = $4
		WHERE id = $1 AND county_id = $2 AND status = 'inactive'
	`
	tag, err := tx.Exec(ctx, update, deal.ID, deal.CountyID, deal.Status, deal.ActivatedAt)
	if err != nil {
		return fmt.Errorf("activate deal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidDealTransition
	}

	rows := make([][]interface{}, 0, len(vouchers))
	for _, v := range vouchers {
		rows = append(rows, []interface{}{
			v.ID, v.CountyID, v.DealID, v.BusinessID,
			v.RedemptionToken, v.Status, v.IssuedAt, v.ExpiresAt,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"vouchers"},
		[]string{"id", "county_id", "deal_id", "business_id", "redemption_token", "status", "issued_at", "expires_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("materialize vouchers: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete removes an inactive deal that has no vouchers. The status condition
// lives in the DELETE itself so a concurrent activation cannot slip a live
// deal out from under us.
func (r *PostgresDealRepository) Delete(ctx context.Context, countyID, id string) error {
	query := `
		DELETE FROM deals
		WHERE id = $1 AND county_id = $2 AND status = 'inactive'
		  AND NOT EXISTS (SELECT 1 FROM vouchers WHERE deal_id = $1 AND county_id = $2)
	`
	tag, err := r.pool.Exec(ctx, query, id, countyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing, non-inactive, and voucher-bearing deals.
		var status string
		var hasVouchers bool
		err := r.pool.QueryRow(ctx,
			`SELECT status, EXISTS(SELECT 1 FROM vouchers WHERE deal_id = $1 AND county_id = $2)
			 FROM deals WHERE id = $1 AND county_id = $2`,
			id, countyID).Scan(&status, &hasVouchers)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrDealNotFound
			}
			return err
		}
		if hasVouchers {
			return domain.ErrCannotDeleteWithVouchers
		}
		return domain.ErrDealNotInactive
	}
	return nil
}
