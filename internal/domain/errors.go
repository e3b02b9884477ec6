package domain

import (
	"errors"
	"fmt"
	"strings"
)

// County boundary errors
var (
	ErrCountyContextRequired = errors.New("county context is required")
	ErrCountyNotFound        = errors.New("county not found")
	ErrCountyInactive        = errors.New("county is inactive")
)

// Business errors
var (
	ErrBusinessNotFound  = errors.New("business not found")
	ErrBusinessNotActive = errors.New("business is not active")
)

// Deal lifecycle errors
var (
	ErrDealNotFound             = errors.New("deal not found")
	ErrInvalidDealTransition    = errors.New("invalid deal status transition")
	ErrNotDealOwner             = errors.New("requester does not own this deal")
	ErrDealNotInactive          = errors.New("deal can only be edited while inactive")
	ErrInvalidPricing           = errors.New("invalid deal pricing")
	ErrCannotDeleteWithVouchers = errors.New("deal cannot be deleted while vouchers exist")
	ErrDealNotActive            = errors.New("deal is not active")
	ErrDealExpired              = errors.New("deal redemption window has ended")
	ErrQuantityLimitExceeded    = errors.New("voucher quantity limit exceeded for this deal")
)

// Purchase allocation errors
var (
	ErrPurchaseNotFound          = errors.New("purchase not found")
	ErrPaymentIntentAlreadyUsed  = errors.New("payment intent already bound to a purchase")
	ErrNoAvailableVouchers       = errors.New("no available vouchers for this deal")
	ErrDoubleAssignmentPrevented = errors.New("voucher was assigned by a concurrent purchase")
	ErrPurchaseTransactionFailed = errors.New("purchase transaction failed")
)

// Redemption errors
var (
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrVoucherNotAssigned = errors.New("voucher is not in an assignable state")
	ErrAlreadyRedeemed    = errors.New("voucher already redeemed")
	ErrInvalidForBusiness = errors.New("voucher does not belong to this business")
)

// Monitor errors
var (
	ErrReviewTaskNotFound = errors.New("review task not found")
)

// MissingFieldsError reports which required deal fields are empty at
// activation time. Fields are reported in a stable order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// AllowanceExceededError reports the exact shortfall when a business would
// exceed its monthly voucher issuance allowance.
type AllowanceExceededError struct {
	Allowance int
	Issued    int
	Requested int
}

func (e *AllowanceExceededError) Error() string {
	return fmt.Sprintf("monthly voucher allowance exceeded: allowance=%d issued=%d requested=%d",
		e.Allowance, e.Issued, e.Requested)
}

// Remaining returns how many vouchers the business may still issue this month.
func (e *AllowanceExceededError) Remaining() int {
	r := e.Allowance - e.Issued
	if r < 0 {
		return 0
	}
	return r
}

// Excess returns how many vouchers over the allowance the request would go.
func (e *AllowanceExceededError) Excess() int {
	return e.Issued + e.Requested - e.Allowance
}

// CheckAllowance reports whether issuing requested more vouchers stays inside
// the monthly allowance given how many were already issued this window. A nil
// allowance means unlimited.
func CheckAllowance(allowance *int, issued, requested int) error {
	if allowance == nil {
		return nil
	}
	if issued+requested > *allowance {
		return &AllowanceExceededError{
			Allowance: *allowance,
			Issued:    issued,
			Requested: requested,
		}
	}
	return nil
}

// CheckQuantityLimit reports whether materializing requested more vouchers
// would take a deal past its quantity limit, given how many vouchers of any
// status already exist for it.
func CheckQuantityLimit(limit, existing, requested int) error {
	if limit > 0 && existing+requested > limit {
		return ErrQuantityLimitExceeded
	}
	return nil
}
