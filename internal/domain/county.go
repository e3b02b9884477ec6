package domain

import (
	"time"
)

// County is the hard isolation boundary of the platform. Every business,
// deal, voucher and purchase belongs to exactly one county, and no query
// may cross county lines.
type County struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// BusinessStatus represents the account standing of a vendor.
type BusinessStatus string

const (
	BusinessStatusActive    BusinessStatus = "active"
	BusinessStatusSuspended BusinessStatus = "suspended"
)

// Business is a vendor account. It owns deals and redeems vouchers at the
// point of sale. MonthlyVoucherAllowance caps new voucher issuance per
// calendar month; nil means unlimited.
type Business struct {
	ID                      string         `json:"id"`
	CountyID                string         `json:"county_id"`
	OwnerUserID             string         `json:"owner_user_id"`
	Name                    string         `json:"name"`
	Status                  BusinessStatus `json:"status"`
	MonthlyVoucherAllowance *int           `json:"monthly_voucher_allowance,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// IsActive reports whether the business may own active deals and redeem vouchers.
func (b *Business) IsActive() bool {
	return b.Status == BusinessStatusActive
}
