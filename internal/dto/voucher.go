package dto

// GrantVouchersRequest is the payload for topping up a deal's voucher
// inventory after activation. The grant is subject to the same monthly
// allowance as activation-time materialization.
type GrantVouchersRequest struct {
	// DealID comes from the route, not the body
	DealID   string `json:"-"`
	Quantity int    `json:"quantity" binding:"required"`
}

// Validate checks constraints binding tags cannot express
func (r *GrantVouchersRequest) Validate() (bool, string) {
	if r.Quantity <= 0 {
		return false, "quantity must be positive"
	}
	if r.Quantity > 1000 {
		return false, "quantity must not exceed 1000 per grant"
	}
	return true, ""
}

// GrantVouchersResponse reports how many vouchers were materialized
type GrantVouchersResponse struct {
	DealID  string `json:"deal_id"`
	Granted int    `json:"granted"`
}

// VoucherCountsResponse reports per-status inventory for a deal
type VoucherCountsResponse struct {
	DealID    string `json:"deal_id"`
	Available int    `json:"available"`
	Assigned  int    `json:"assigned"`
	Redeemed  int    `json:"redeemed"`
}
