package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PurchaseStatus is terminal by construction: a purchase row is only written
// once the allocation transaction commits.
type PurchaseStatus string

const (
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// Purchase is the immutable record binding one confirmed payment to exactly
// one assigned voucher. PaymentIntentID is globally unique, which enforces
// exactly-once consumption of a payment confirmation. Rows are never updated
// or deleted.
type Purchase struct {
	ID              string         `json:"id"`
	CountyID        string         `json:"county_id"`
	DealID          string         `json:"deal_id"`
	VoucherID       string         `json:"voucher_id"`
	UserID          string         `json:"user_id"`
	PaymentIntentID string         `json:"payment_intent_id"`
	PaymentProvider string         `json:"payment_provider"`
	AmountCents     int64          `json:"amount_cents"`
	Status          PurchaseStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewPurchase validates inputs and builds a completed purchase record.
// Payment confirmation must have already succeeded before this is called;
// the allocator never talks to a payment provider.
func NewPurchase(countyID, dealID, voucherID, userID, paymentIntentID, paymentProvider string, amountCents int64) (*Purchase, error) {
	if countyID == "" {
		return nil, errors.New("county_id is required")
	}
	if dealID == "" {
		return nil, errors.New("deal_id is required")
	}
	if voucherID == "" {
		return nil, errors.New("voucher_id is required")
	}
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if paymentIntentID == "" {
		return nil, errors.New("payment_intent_id is required")
	}
	if paymentProvider == "" {
		return nil, errors.New("payment_provider is required")
	}
	if amountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}

	return &Purchase{
		ID:              uuid.New().String(),
		CountyID:        countyID,
		DealID:          dealID,
		VoucherID:       voucherID,
		UserID:          userID,
		PaymentIntentID: paymentIntentID,
		PaymentProvider: paymentProvider,
		AmountCents:     amountCents,
		Status:          PurchaseStatusCompleted,
		CreatedAt:       time.Now(),
	}, nil
}
