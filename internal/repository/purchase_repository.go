package repository

import (
	"context"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// AllocationParams carries everything the purchase allocator needs. Payment
// confirmation has already succeeded by the time this is invoked.
type AllocationParams struct {
	CountyID        string
	DealID          string
	UserID          string
	PaymentIntentID string
	PaymentProvider string
	AmountCents     int64
}

// AllocationResult is the committed outcome of a successful allocation.
type AllocationResult struct {
	Purchase *domain.Purchase
	Voucher  *domain.Voucher
}

// PurchaseRepository defines data access for purchases, including the atomic
// allocation transaction.
type PurchaseRepository interface {
	// Allocate runs the entire purchase allocation inside one serializable
	// transaction: payment-intent idempotency check, voucher selection,
	// conditional assignment, purchase insert and deal touch. Either the
	// whole unit commits or none of it does.
	Allocate(ctx context.Context, params AllocationParams) (*AllocationResult, error)
	// GetByID retrieves a purchase within a county, nil if not found
	GetByID(ctx context.Context, countyID, id string) (*domain.Purchase, error)
	// GetByPaymentIntent retrieves the purchase bound to a payment intent,
	// nil if none exists. The lookup is global: payment intents are unique
	// across counties.
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Purchase, error)
}

// ReviewTaskRepository defines data access for the passive monitor's durable
// advisory tasks.
type ReviewTaskRepository interface {
	// Create persists a new unresolved review task
	Create(ctx context.Context, task *domain.ReviewTask) error
	// List retrieves review tasks for a county, optionally filtered on
	// resolution state
	List(ctx context.Context, countyID string, resolved *bool, limit, offset int) ([]*domain.ReviewTask, int, error)
	// Resolve marks a task resolved; returns domain-level not-found when the
	// task does not exist in this county
	Resolve(ctx context.Context, countyID, id string) error
}
