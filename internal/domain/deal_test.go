package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestDealStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     DealStatus
		to       DealStatus
		expected bool
	}{
		{"inactive -> active", DealStatusInactive, DealStatusActive, true},
		{"active -> expired", DealStatusActive, DealStatusExpired, true},
		{"inactive -> expired", DealStatusInactive, DealStatusExpired, false},
		{"active -> inactive", DealStatusActive, DealStatusInactive, false},
		{"expired -> active", DealStatusExpired, DealStatusActive, false},
		{"expired -> inactive", DealStatusExpired, DealStatusInactive, false},
		{"unknown -> active", DealStatus("bogus"), DealStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDealStatusIsTerminal(t *testing.T) {
	if DealStatusInactive.IsTerminal() || DealStatusActive.IsTerminal() {
		t.Error("inactive and active must not be terminal")
	}
	if !DealStatusExpired.IsTerminal() {
		t.Error("expired must be terminal")
	}
}

func completeDeal(t *testing.T) *Deal {
	t.Helper()

	deal, err := NewDeal("county-1", "biz-1", "Half-off lake cruise")
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(30 * 24 * time.Hour)
	deal.Description = "Two-hour guided cruise"
	deal.Category = "recreation"
	deal.OriginalValueCents = 8000
	deal.DealPriceCents = 4000
	deal.RedeemStart = &start
	deal.RedeemEnd = &end
	deal.VoucherQuantityLimit = 50
	return deal
}

func TestDeal_Activate(t *testing.T) {
	deal := completeDeal(t)

	if err := deal.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if deal.Status != DealStatusActive {
		t.Errorf("expected status active, got %s", deal.Status)
	}
	if deal.ActivatedAt == nil {
		t.Error("expected ActivatedAt to be set")
	}

	// Second activation must be rejected by the state machine.
	if err := deal.Activate(); !errors.Is(err, ErrInvalidDealTransition) {
		t.Errorf("expected ErrInvalidDealTransition, got %v", err)
	}
}

func TestDeal_Activate_MissingFields(t *testing.T) {
	deal := completeDeal(t)
	deal.Description = ""
	deal.VoucherQuantityLimit = 0

	err := deal.Activate()
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}

	want := []string{"description", "voucher_quantity_limit"}
	if !reflect.DeepEqual(missing.Fields, want) {
		t.Errorf("expected missing fields %v, got %v", want, missing.Fields)
	}
	if deal.Status != DealStatusInactive {
		t.Errorf("status must be unchanged on failed activation, got %s", deal.Status)
	}
}

func TestDeal_ValidatePricing(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		price    int64
		wantErr  bool
	}{
		{"price below original", 8000, 4000, false},
		{"price equals original", 8000, 8000, true},
		{"price above original", 8000, 9000, true},
		{"zero price", 8000, 0, true},
		{"zero original", 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := completeDeal(t)
			deal.OriginalValueCents = tt.original
			deal.DealPriceCents = tt.price

			err := deal.ValidatePricing()
			if tt.wantErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDeal_IsPurchasable(t *testing.T) {
	now := time.Now()

	deal := completeDeal(t)
	if err := deal.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	deal.GuardStatus = GuardStatusApproved

	if err := deal.IsPurchasable(now); err != nil {
		t.Errorf("expected purchasable, got %v", err)
	}

	// Guard not approved blocks purchase but not lifecycle.
	deal.GuardStatus = GuardStatusPending
	if err := deal.IsPurchasable(now); !errors.Is(err, ErrDealNotActive) {
		t.Errorf("expected ErrDealNotActive for pending guard, got %v", err)
	}

	deal.GuardStatus = GuardStatusApproved
	past := now.Add(-time.Hour)
	deal.RedeemEnd = &past
	if err := deal.IsPurchasable(now); !errors.Is(err, ErrDealExpired) {
		t.Errorf("expected ErrDealExpired, got %v", err)
	}

	inactive := completeDeal(t)
	if err := inactive.IsPurchasable(now); !errors.Is(err, ErrDealNotActive) {
		t.Errorf("expected ErrDealNotActive for inactive deal, got %v", err)
	}
}
