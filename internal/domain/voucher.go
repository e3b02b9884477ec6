package domain

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"time"

	"github.com/google/uuid"
)

// VoucherStatus represents the allocation state of a voucher
type VoucherStatus string

const (
	VoucherStatusAvailable VoucherStatus = "available"
	VoucherStatusAssigned  VoucherStatus = "assigned"
	VoucherStatusRedeemed  VoucherStatus = "redeemed"
)

// voucherTransitions defines the monotonic voucher status chain.
// No backward or skipped transition is ever allowed.
var voucherTransitions = map[VoucherStatus][]VoucherStatus{
	VoucherStatusAvailable: {VoucherStatusAssigned},
	VoucherStatusAssigned:  {VoucherStatusRedeemed},
	VoucherStatusRedeemed:  {}, // Terminal state
}

// IsValid returns true if the status is a known voucher status.
func (s VoucherStatus) IsValid() bool {
	_, exists := voucherTransitions[s]
	return exists
}

// IsTerminal returns true if the voucher can never change state again.
func (s VoucherStatus) IsTerminal() bool {
	return s == VoucherStatusRedeemed
}

// CanTransitionTo returns true if transition to the target status is allowed.
func (s VoucherStatus) CanTransitionTo(target VoucherStatus) bool {
	allowed, exists := voucherTransitions[s]
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

// Voucher is one allocatable unit of a deal's inventory. Vouchers are
// pre-materialized up to the deal's quantity limit when the deal activates,
// each starting available.
type Voucher struct {
	ID              string        `json:"id"`
	CountyID        string        `json:"county_id"`
	DealID          string        `json:"deal_id"`
	BusinessID      string        `json:"business_id"`
	RedemptionToken string        `json:"redemption_token"`
	Status          VoucherStatus `json:"status"`
	IssuedAt        time.Time     `json:"issued_at"`
	ExpiresAt       *time.Time    `json:"expires_at,omitempty"`
	RedeemedAt      *time.Time    `json:"redeemed_at,omitempty"`
}

// tokenEncoding drops padding and vowel-heavy characters aren't a concern at
// this alphabet size; 20 random bytes give 160 bits per token.
var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewRedemptionToken generates a fresh unique redemption token.
func NewRedemptionToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(buf), nil
}

// NewVoucher creates an available voucher for a deal with a fresh token.
func NewVoucher(countyID, dealID, businessID string, expiresAt *time.Time) (*Voucher, error) {
	if countyID == "" {
		return nil, errors.New("county_id is required")
	}
	if dealID == "" {
		return nil, errors.New("deal_id is required")
	}
	if businessID == "" {
		return nil, errors.New("business_id is required")
	}

	token, err := NewRedemptionToken()
	if err != nil {
		return nil, err
	}

	return &Voucher{
		ID:              uuid.New().String(),
		CountyID:        countyID,
		DealID:          dealID,
		BusinessID:      businessID,
		RedemptionToken: token,
		Status:          VoucherStatusAvailable,
		IssuedAt:        time.Now(),
		ExpiresAt:       expiresAt,
	}, nil
}

// MaterializeVouchers builds n available vouchers for a deal. Used when a
// deal activates; the bulk insert happens in the same transaction as the
// status change.
func MaterializeVouchers(deal *Deal, n int) ([]*Voucher, error) {
	if n <= 0 {
		return nil, errors.New("voucher count must be positive")
	}

	vouchers := make([]*Voucher, 0, n)
	for i := 0; i < n; i++ {
		v, err := NewVoucher(deal.CountyID, deal.ID, deal.BusinessID, deal.RedeemEnd)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}

// MarkAssigned transitions the voucher available -> assigned.
func (v *Voucher) MarkAssigned() error {
	if !v.Status.CanTransitionTo(VoucherStatusAssigned) {
		if v.Status == VoucherStatusRedeemed {
			return ErrAlreadyRedeemed
		}
		return ErrDoubleAssignmentPrevented
	}
	v.Status = VoucherStatusAssigned
	return nil
}

// MarkRedeemed transitions the voucher assigned -> redeemed.
func (v *Voucher) MarkRedeemed() error {
	if v.Status == VoucherStatusRedeemed {
		return ErrAlreadyRedeemed
	}
	if !v.Status.CanTransitionTo(VoucherStatusRedeemed) {
		return ErrVoucherNotAssigned
	}
	now := time.Now()
	v.Status = VoucherStatusRedeemed
	v.RedeemedAt = &now
	return nil
}
