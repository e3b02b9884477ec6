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

const voucherColumns = `id, county_id, deal_id, business_id, redemption_token, status, issued_at, expires_at, redeemed_at`

// PostgresVoucherRepository implements VoucherRepository using PostgreSQL
type PostgresVoucherRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVoucherRepository creates a new PostgresVoucherRepository
func NewPostgresVoucherRepository(pool *pgxpool.Pool) *PostgresVoucherRepository {
	return &PostgresVoucherRepository{pool: pool}
}

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	v := &domain.Voucher{}
	err := row.Scan(
		&v.ID,
		&v.CountyID,
		&v.DealID,
		&v.BusinessID,
		&v.RedemptionToken,
		&v.Status,
		&v.IssuedAt,
		&v.ExpiresAt,
		&v.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// GetByID retrieves a voucher within a county
func (r *PostgresVoucherRepository) GetByID(ctx context.Context, countyID, id string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1 AND county_id = $2`
	return scanVoucher(r.pool.QueryRow(ctx, query, id, countyID))
}

// GetByToken retrieves a voucher by its redemption token
func (r *PostgresVoucherRepository) GetByToken(ctx context.Context, token string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE redemption_token = $1`
	return scanVoucher(r.pool.QueryRow(ctx, query, token))
}

// CreateBatch inserts additional vouchers for an already-active deal. The
// business row lock serializes concurrent grants against the same business,
// which makes the count-then-insert sequence safe.
func (r *PostgresVoucherRepository) CreateBatch(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin grant tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := guardIssuance(ctx, tx, deal, len(vouchers), from, until); err != nil {
		return err
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
		return err
	}

	return tx.Commit(ctx)
}

// guardIssuance locks the business row and re-checks the deal quantity limit
// and the monthly allowance against counts taken under the lock. Must run
// inside the same transaction as the voucher insert.
func guardIssuance(ctx context.Context, tx pgx.Tx, deal *domain.Deal, requested int, from, until time.Time) error {
	var allowance *int
	err := tx.QueryRow(ctx,
		`SELECT monthly_voucher_allowance FROM businesses WHERE id = $1 AND county_id = $2 FOR UPDATE`,
		deal.BusinessID, deal.CountyID).Scan(&allowance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBusinessNotFound
		}
		return err
	}

	var existing int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM vouchers WHERE deal_id = $1 AND county_id = $2`,
		deal.ID, deal.CountyID).Scan(&existing)
	if err != nil {
		return err
	}
	if err := domain.CheckQuantityLimit(deal.VoucherQuantityLimit, existing, requested); err != nil {
		return err
	}

	var issued int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM vouchers
		 WHERE business_id = $1 AND county_id = $2
		   AND issued_at >= $3 AND issued_at < $4`,
		deal.BusinessID, deal.CountyID, from, until).Scan(&issued)
	if err != nil {
		return err
	}
	return domain.CheckAllowance(allowance, issued, requested)
}

// CountByDeal returns voucher counts per status for a deal
func (r *PostgresVoucherRepository) CountByDeal(ctx context.Context, countyID, dealID string) (map[domain.VoucherStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM vouchers
		WHERE deal_id = $1 AND county_id = $2
		GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, dealID, countyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.VoucherStatus]int)
	for rows.Next() {
		var status domain.VoucherStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountIssuedInWindow counts vouchers issued for a business inside [from, until)
func (r *PostgresVoucherRepository) CountIssuedInWindow(ctx context.Context, countyID, businessID string, from, until time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM vouchers
		WHERE business_id = $1 AND county_id = $2
		  AND issued_at >= $3 AND issued_at < $4
	`
	var n int
	err := r.pool.QueryRow(ctx, query, businessID, countyID, from, until).Scan(&n)
	return n, err
}

// Assign performs the conditional available -> assigned update
func (r *PostgresVoucherRepository) Assign(ctx context.Context, countyID, voucherID string) error {
	query := `
		UPDATE vouchers
		SET status = 'assigned'
		WHERE id = $1 AND county_id = $2 AND status = 'available'
	`
	tag, err := r.pool.Exec(ctx, query, voucherID, countyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVoucherNotAssigned
	}
	return nil
}

// Redeem performs the conditional assigned -> redeemed update. No
// serializable transaction: contention is per-voucher, so the conditional
// write alone is sufficient.
func (r *PostgresVoucherRepository) Redeem(ctx context.Context, countyID, voucherID string, redeemedAt time.Time) error {
	query := `
		UPDATE vouchers
		SET status = 'redeemed', redeemed_at = $3
		WHERE id = $1 AND county_id = $2 AND status = 'assigned'
	`
	tag, err := r.pool.Exec(ctx, query, voucherID, countyID, redeemedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Lost the race or the voucher was never assigned; for the caller
		// both collapse to the same conflict outcome.
		return domain.ErrAlreadyRedeemed
	}
	return nil
}
