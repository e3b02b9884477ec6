package repository

import (
	"context"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// DealRepository defines data access for deals. All methods are county-scoped.
type DealRepository interface {
	// Create creates a new deal
	Create(ctx context.Context, deal *domain.Deal) error
	// GetByID retrieves a deal within a county, nil if not found
	GetByID(ctx context.Context, countyID, id string) (*domain.Deal, error)
	// List retrieves deals within a county with pagination; publicOnly
	// restricts to active deals with an approved guard status
	List(ctx context.Context, countyID string, publicOnly bool, limit, offset int) ([]*domain.Deal, int, error)
	// Update persists edits to an inactive deal
	Update(ctx context.Context, deal *domain.Deal) error
	// UpdateGuardStatus sets the advisory guard status
	UpdateGuardStatus(ctx context.Context, countyID, id string, status domain.GuardStatus) error
	// MarkExpired performs the conditional active -> expired update; zero
	// rows affected means the deal was not active
	MarkExpired(ctx context.Context, countyID, id string) error
	// ActivateWithVouchers transitions the deal to active and bulk-inserts
	// its vouchers in a single transaction. The status change is conditional
	// on the deal still being inactive, and the monthly allowance is
	// re-checked inside [from, until) under a business row lock before the
	// vouchers are inserted.
	ActivateWithVouchers(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error
	// Delete removes an inactive deal that has no vouchers; returns
	// domain.ErrDealNotInactive or domain.ErrCannotDeleteWithVouchers
	// otherwise
	Delete(ctx context.Context, countyID, id string) error
}
