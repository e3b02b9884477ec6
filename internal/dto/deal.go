package dto

import (
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// CreateDealRequest is the payload for creating a draft deal
type CreateDealRequest struct {
	BusinessID           string     `json:"business_id" binding:"required"`
	Title                string     `json:"title" binding:"required"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	OriginalValueCents   int64      `json:"original_value_cents"`
	DealPriceCents       int64      `json:"deal_price_cents"`
	RedeemStart          *time.Time `json:"redeem_start"`
	RedeemEnd            *time.Time `json:"redeem_end"`
	VoucherQuantityLimit int        `json:"voucher_quantity_limit"`
}

// Validate checks cross-field constraints that binding tags cannot express
func (r *CreateDealRequest) Validate() (bool, string) {
	if r.OriginalValueCents < 0 || r.DealPriceCents < 0 {
		return false, "values must not be negative"
	}
	if r.OriginalValueCents > 0 && r.DealPriceCents > 0 && r.DealPriceCents >= r.OriginalValueCents {
		return false, "deal price must be strictly less than original value"
	}
	if r.RedeemStart != nil && r.RedeemEnd != nil && !r.RedeemEnd.After(*r.RedeemStart) {
		return false, "redeem window end must be after start"
	}
	if r.VoucherQuantityLimit < 0 {
		return false, "voucher quantity limit must not be negative"
	}
	return true, ""
}

// UpdateDealRequest is the payload for editing an inactive deal. All fields
// are optional; only provided fields are applied.
type UpdateDealRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Category             *string    `json:"category"`
	OriginalValueCents   *int64     `json:"original_value_cents"`
	DealPriceCents       *int64     `json:"deal_price_cents"`
	RedeemStart          *time.Time `json:"redeem_start"`
	RedeemEnd            *time.Time `json:"redeem_end"`
	VoucherQuantityLimit *int       `json:"voucher_quantity_limit"`
}

// Validate ensures at least one field is provided
func (r *UpdateDealRequest) Validate() (bool, string) {
	if r.Title == nil && r.Description == nil && r.Category == nil &&
		r.OriginalValueCents == nil && r.DealPriceCents == nil &&
		r.RedeemStart == nil && r.RedeemEnd == nil && r.VoucherQuantityLimit == nil {
		return false, "at least one field must be provided"
	}
	return true, ""
}

// SetGuardStatusRequest is the payload for the advisory guard callback
type SetGuardStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ActivateDealResponse reports the lifecycle transition performed
type ActivateDealResponse struct {
	DealID         string    `json:"deal_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActivatedAt    time.Time `json:"activated_at"`
	VouchersIssued int       `json:"vouchers_issued"`
}

// DealResponse is the API shape of a deal
type DealResponse struct {
	ID                   string     `json:"id"`
	CountyID             string     `json:"county_id"`
	BusinessID           string     `json:"business_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Category             string     `json:"category,omitempty"`
	OriginalValueCents   int64      `json:"original_value_cents"`
	DealPriceCents       int64      `json:"deal_price_cents"`
	RedeemStart          *time.Time `json:"redeem_start,omitempty"`
	RedeemEnd            *time.Time `json:"redeem_end,omitempty"`
	VoucherQuantityLimit int        `json:"voucher_quantity_limit"`
	Status               string     `json:"status"`
	GuardStatus          string     `json:"guard_status"`
	CreatedAt            string     `json:"created_at"`
}

// NewDealResponse converts a domain deal to its API shape
func NewDealResponse(d *domain.Deal) *DealResponse {
	return &DealResponse{
		ID:                   d.ID,
		CountyID:             d.CountyID,
		BusinessID:           d.BusinessID,
		Title:                d.Title,
		Description:          d.Description,
		Category:             d.Category,
		OriginalValueCents:   d.OriginalValueCents,
		DealPriceCents:       d.DealPriceCents,
		RedeemStart:          d.RedeemStart,
		RedeemEnd:            d.RedeemEnd,
		VoucherQuantityLimit: d.VoucherQuantityLimit,
		Status:               string(d.Status),
		GuardStatus:          string(d.GuardStatus),
		CreatedAt:            d.CreatedAt.Format(time.RFC3339),
	}
}

// DealListFilter carries pagination for deal listings
type DealListFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SetDefaults applies default pagination values
func (f *DealListFilter) SetDefaults() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}
