package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DealStatus represents the lifecycle state of a deal
type DealStatus string

const (
	DealStatusInactive DealStatus = "inactive"
	DealStatusActive   DealStatus = "active"
	DealStatusExpired  DealStatus = "expired"
)

// dealTransitions defines allowed lifecycle transitions.
// Key is current status, value is list of allowed next statuses.
var dealTransitions = map[DealStatus][]DealStatus{
	DealStatusInactive: {DealStatusActive},
	DealStatusActive:   {DealStatusExpired},
	DealStatusExpired:  {}, // Terminal state
}

// IsValid returns true if the status is a known deal status.
func (s DealStatus) IsValid() bool {
	_, exists := dealTransitions[s]
	return exists
}

// IsTerminal returns true if no further transition is allowed.
func (s DealStatus) IsTerminal() bool {
	return s == DealStatusExpired
}

// CanTransitionTo returns true if transition to the target status is allowed.
func (s DealStatus) CanTransitionTo(target DealStatus) bool {
	allowed, exists := dealTransitions[s]
	if !exists {
		return false
	}
	for _, a := range allowed {
		if a == target {
			return true
		}
	}
	return false
}

// GuardStatus is the advisory content/pricing review flag on a deal. It is an
// independent axis from the lifecycle: it gates public visibility and
// purchasability but never drives lifecycle transitions.
type GuardStatus string

const (
	GuardStatusPending  GuardStatus = "pending"
	GuardStatusApproved GuardStatus = "approved"
	GuardStatusRejected GuardStatus = "rejected"
)

// IsValid returns true if the guard status is known.
func (g GuardStatus) IsValid() bool {
	switch g {
	case GuardStatusPending, GuardStatusApproved, GuardStatusRejected:
		return true
	}
	return false
}

// Deal is a vendor-defined, county-scoped discount offer with a fixed
// voucher inventory ceiling.
type Deal struct {
	ID                   string      `json:"id"`
	CountyID             string      `json:"county_id"`
	BusinessID           string      `json:"business_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Category             string      `json:"category"`
	OriginalValueCents   int64       `json:"original_value_cents"`
	DealPriceCents       int64       `json:"deal_price_cents"`
	RedeemStart          *time.Time  `json:"redeem_start,omitempty"`
	RedeemEnd            *time.Time  `json:"redeem_end,omitempty"`
	VoucherQuantityLimit int         `json:"voucher_quantity_limit"`
	Status               DealStatus  `json:"status"`
	GuardStatus          GuardStatus `json:"guard_status"`
	ActivatedAt          *time.Time  `json:"activated_at,omitempty"`
	LastActiveAt         *time.Time  `json:"last_active_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// NewDeal creates a deal in the inactive state. Pricing is validated when
// both values are present; remaining required fields are enforced at
// activation so vendors can save drafts.
func NewDeal(countyID, businessID, title string) (*Deal, error) {
	if countyID == "" {
		return nil, errors.New("county_id is required")
	}
	if businessID == "" {
		return nil, errors.New("business_id is required")
	}
	if title == "" {
		return nil, errors.New("title is required")
	}

	now := time.Now()
	return &Deal{
		ID:          uuid.New().String(),
		CountyID:    countyID,
		BusinessID:  businessID,
		Title:       title,
		Status:      DealStatusInactive,
		GuardStatus: GuardStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidatePricing enforces that the deal price undercuts the original value.
func (d *Deal) ValidatePricing() error {
	if d.OriginalValueCents <= 0 {
		return fmt.Errorf("%w: original value must be positive", ErrInvalidPricing)
	}
	if d.DealPriceCents <= 0 {
		return fmt.Errorf("%w: deal price must be positive", ErrInvalidPricing)
	}
	if d.DealPriceCents >= d.OriginalValueCents {
		return fmt.Errorf("%w: deal price must be strictly less than original value", ErrInvalidPricing)
	}
	return nil
}

// MissingActivationFields returns the required fields that are still empty,
// in a stable order. An empty result means the deal is ready for activation.
func (d *Deal) MissingActivationFields() []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Description == "" {
		missing = append(missing, "description")
	}
	if d.Category == "" {
		missing = append(missing, "category")
	}
	if d.OriginalValueCents <= 0 {
		missing = append(missing, "original_value_cents")
	}
	if d.DealPriceCents <= 0 {
		missing = append(missing, "deal_price_cents")
	}
	if d.RedeemStart == nil {
		missing = append(missing, "redeem_start")
	}
	if d.RedeemEnd == nil {
		missing = append(missing, "redeem_end")
	}
	if d.VoucherQuantityLimit <= 0 {
		missing = append(missing, "voucher_quantity_limit")
	}
	return missing
}

// Activate transitions the deal to active. The caller is responsible for the
// admin-role and business-status checks; this only enforces the state machine
// and field completeness.
func (d *Deal) Activate() error {
	if !d.Status.CanTransitionTo(DealStatusActive) {
		return ErrInvalidDealTransition
	}
	if missing := d.MissingActivationFields(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	if err := d.ValidatePricing(); err != nil {
		return err
	}

	now := time.Now()
	d.Status = DealStatusActive
	d.ActivatedAt = &now
	d.UpdatedAt = now
	return nil
}

// Expire transitions the deal to expired.
func (d *Deal) Expire() error {
	if !d.Status.CanTransitionTo(DealStatusExpired) {
		return ErrInvalidDealTransition
	}
	d.Status = DealStatusExpired
	d.UpdatedAt = time.Now()
	return nil
}

// IsEditable reports whether content/pricing/window/quantity edits are allowed.
func (d *Deal) IsEditable() bool {
	return d.Status == DealStatusInactive
}

// IsPurchasable reports whether the allocator may sell against this deal at
// the given instant. Lifecycle and the advisory guard are both required.
func (d *Deal) IsPurchasable(now time.Time) error {
	if d.Status != DealStatusActive {
		return ErrDealNotActive
	}
	if d.GuardStatus != GuardStatusApproved {
		return ErrDealNotActive
	}
	if d.RedeemEnd != nil && now.After(*d.RedeemEnd) {
		return ErrDealExpired
	}
	return nil
}
