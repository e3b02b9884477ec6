package repository

import (
	"context"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// VoucherRepository defines data access for vouchers. All methods are
// county-scoped except GetByToken, which resolves the county from the
// globally unique token.
type VoucherRepository interface {
	// GetByID retrieves a voucher within a county, nil if not found
	GetByID(ctx context.Context, countyID, id string) (*domain.Voucher, error)
	// GetByToken retrieves a voucher by its redemption token, nil if not found
	GetByToken(ctx context.Context, token string) (*domain.Voucher, error)
	// CreateBatch inserts additional vouchers for an already-active deal.
	// The whole batch runs in one transaction that locks the owning business
	// row, then re-checks the deal's quantity limit and the monthly
	// allowance inside [from, until) before inserting, so concurrent grants
	// cannot slip past either guard.
	CreateBatch(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error
	// CountByDeal returns how many vouchers exist for a deal per status
	CountByDeal(ctx context.Context, countyID, dealID string) (map[domain.VoucherStatus]int, error)
	// CountIssuedInWindow counts vouchers issued for a business inside
	// [from, until). Used by the monthly allowance guard.
	CountIssuedInWindow(ctx context.Context, countyID, businessID string, from, until time.Time) (int, error)
	// Assign performs the conditional available -> assigned update used to
	// hand a voucher out without a purchase. Zero rows affected means the
	// voucher was not available.
	Assign(ctx context.Context, countyID, voucherID string) error
	// Redeem performs the conditional assigned -> redeemed update. Zero rows
	// affected means the redemption lost a race or the voucher was not
	// assigned.
	Redeem(ctx context.Context, countyID, voucherID string, redeemedAt time.Time) error
}
