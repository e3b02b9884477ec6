package dto

import (
	"time"
)

// CreatePurchaseRequest is the payload for the purchase allocator. The
// payment intent must already be confirmed with the provider; this service
// never charges anyone.
type CreatePurchaseRequest struct {
	DealID          string `json:"deal_id" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	PaymentProvider string `json:"payment_provider" binding:"required"`
	AmountCents     int64  `json:"amount_cents" binding:"required"`
}

// Validate checks constraints binding tags cannot express
func (r *CreatePurchaseRequest) Validate() (bool, string) {
	if r.AmountCents <= 0 {
		return false, "amount_cents must be positive"
	}
	return true, ""
}

// PurchaseResponse is the API shape of a committed purchase
type PurchaseResponse struct {
	PurchaseID      string     `json:"purchase_id"`
	VoucherID       string     `json:"voucher_id"`
	RedemptionToken string     `json:"redemption_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// RedeemRequest is the payload for redeeming a voucher at the point of sale
type RedeemRequest struct {
	RedemptionToken string `json:"redemption_token" binding:"required"`
}

// RedeemResponse reports the redemption outcome. Redeemed is only true when
// this request performed the terminal transition.
type RedeemResponse struct {
	Redeemed   bool       `json:"redeemed"`
	VoucherID  string     `json:"voucher_id,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// AllowanceResponse reports the monthly issuance headroom for a business.
// MonthlyAllowance is nil when the business is unlimited.
type AllowanceResponse struct {
	Allowed            bool `json:"allowed"`
	CurrentMonthIssued int  `json:"current_month_issued"`
	MonthlyAllowance   *int `json:"monthly_allowance"`
	Remaining          *int `json:"remaining"`
	Requested          int  `json:"requested"`
	Excess             int  `json:"excess,omitempty"`
}

// ReviewTaskListFilter carries pagination and resolution filter for review tasks
type ReviewTaskListFilter struct {
	Page     int   `form:"page"`
	Limit    int   `form:"limit"`
	Resolved *bool `form:"resolved"`
}

// SetDefaults applies default pagination values
func (f *ReviewTaskListFilter) SetDefaults() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}
