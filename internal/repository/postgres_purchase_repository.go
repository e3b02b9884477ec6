package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

const purchaseColumns = `id, county_id, deal_id, voucher_id, user_id, payment_intent_id, payment_provider, amount_cents, status, created_at`

// Postgres error codes the allocator cares about.
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
)

// PostgresPurchaseRepository implements PurchaseRepository using PostgreSQL
type PostgresPurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPurchaseRepository creates a new PostgresPurchaseRepository
func NewPostgresPurchaseRepository(pool *pgxpool.Pool) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{pool: pool}
}

// Allocate binds a confirmed payment to exactly one voucher. Every
// precondition is checked inside the same serializable transaction as the
// mutation so no race window exists between check and write:
//
//  1. payment intent must not already be bound to a purchase
//  2. the deal must be active, guard-approved and inside its window
//  3. the oldest available voucher is selected with SKIP LOCKED
//  4. the voucher flips available -> assigned via a conditional update
//  5. the immutable purchase row is inserted
//  6. the deal's last_active_at is touched
//
// Any failure aborts the whole transaction; no partial effects are
// observable. Serialization failures surface as a lost race.
func (r *PostgresPurchaseRepository) Allocate(ctx context.Context, params AllocationParams) (*AllocationResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin allocation tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Step 1: exactly-once payment consumption.
	var intentUsed bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM purchases WHERE payment_intent_id = $1)`,
		params.PaymentIntentID).Scan(&intentUsed)
	if err != nil {
		return nil, translateAllocationError(err)
	}
	if intentUsed {
		return nil, domain.ErrPaymentIntentAlreadyUsed
	}

	// Step 2: deal purchasability, re-read inside the transaction.
	deal, err := scanDeal(tx.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1 AND county_id = $2`,
		params.DealID, params.CountyID))
	if err != nil {
		return nil, translateAllocationError(err)
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}
	if err := deal.IsPurchasable(time.Now()); err != nil {
		return nil, err
	}

	// Step 3: pick the oldest available voucher. SKIP LOCKED keeps
	// concurrent allocators off rows already claimed in-flight.
	voucher, err := scanVoucher(tx.QueryRow(ctx,
		`SELECT `+voucherColumns+` FROM vouchers
		 WHERE deal_id = $1 AND county_id = $2 AND status = 'available'
		 ORDER BY issued_at ASC
		 LIMIT 1
		 FOR UPDATE SKIP LOCKED`,
		params.DealID, params.CountyID))
	if err != nil {
		return nil, translateAllocationError(err)
	}
	if voucher == nil {
		return nil, domain.ErrNoAvailableVouchers
	}

	// Step 4: conditional assignment. Zero rows means the status changed
	// under us despite the row lock, i.e. a lost race.
	tag, err := tx.Exec(ctx,
		`UPDATE vouchers SET status = 'assigned' WHERE id = $1 AND status = 'available'`,
		voucher.ID)
	if err != nil {
		return nil, translateAllocationError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDoubleAssignmentPrevented
	}
	voucher.Status = domain.VoucherStatusAssigned

	// Step 5: the immutable purchase record.
	purchase, err := domain.NewPurchase(
		params.CountyID, params.DealID, voucher.ID, params.UserID,
		params.PaymentIntentID, params.PaymentProvider, params.AmountCents,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO purchases (`+purchaseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		purchase.ID,
		purchase.CountyID,
		purchase.DealID,
		purchase.VoucherID,
		purchase.UserID,
		purchase.PaymentIntentID,
		purchase.PaymentProvider,
		purchase.AmountCents,
		purchase.Status,
		purchase.CreatedAt,
	)
	if err != nil {
		return nil, translateAllocationError(err)
	}

	// Step 6: deal activity touch, same transaction.
	_, err = tx.Exec(ctx,
		`UPDATE deals SET last_active_at = $3 WHERE id = $1 AND county_id = $2`,
		params.DealID, params.CountyID, purchase.CreatedAt)
	if err != nil {
		return nil, translateAllocationError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateAllocationError(err)
	}

	return &AllocationResult{Purchase: purchase, Voucher: voucher}, nil
}

// translateAllocationError maps database-level failures onto the allocator's
// error taxonomy. Unique violations on the payment intent and serialization
// aborts are both expected under contention.
func translateAllocationError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			if pgErr.ConstraintName == "purchases_payment_intent_id_key" {
				return domain.ErrPaymentIntentAlreadyUsed
			}
		case pgCodeSerializationFailure:
			return domain.ErrDoubleAssignmentPrevented
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrPurchaseTransactionFailed
	}
	return err
}

// GetByID retrieves a purchase within a county
func (r *PostgresPurchaseRepository) GetByID(ctx context.Context, countyID, id string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 AND county_id = $2`
	return scanPurchase(r.pool.QueryRow(ctx, query, id, countyID))
}

// GetByPaymentIntent retrieves the purchase bound to a payment intent
func (r *PostgresPurchaseRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE payment_intent_id = $1`
	return scanPurchase(r.pool.QueryRow(ctx, query, paymentIntentID))
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	err := row.Scan(
		&p.ID,
		&p.CountyID,
		&p.DealID,
		&p.VoucherID,
		&p.UserID,
		&p.PaymentIntentID,
		&p.PaymentProvider,
		&p.AmountCents,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
