package service

import (
	"context"
	"errors"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// InventoryService defines the interface for voucher inventory operations:
// the monthly issuance allowance and post-activation grants.
type InventoryService interface {
	// CheckAllowance reports whether a business could issue the requested
	// number of vouchers this calendar month, without issuing anything
	CheckAllowance(ctx context.Context, countyID, businessID string, requested int) (*dto.AllowanceResponse, error)
	// EnsureAllowance returns an AllowanceExceededError when issuing the
	// requested count would push the business over its monthly allowance
	EnsureAllowance(ctx context.Context, business *domain.Business, requested int) error
	// Grant materializes additional available vouchers for an active deal,
	// subject to the deal's quantity limit and the monthly allowance
	Grant(ctx context.Context, countyID string, actor Actor, req *dto.GrantVouchersRequest) (*dto.GrantVouchersResponse, error)
	// AssignVoucher hands a voucher out without a purchase through the same
	// conditional available -> assigned update the allocator uses, making the
	// voucher redeemable
	AssignVoucher(ctx context.Context, countyID, voucherID string) (*domain.Voucher, error)
	// Counts reports the per-status voucher inventory for a deal
	Counts(ctx context.Context, countyID, dealID string) (*dto.VoucherCountsResponse, error)
}

// inventoryService implements InventoryService
type inventoryService struct {
	dealRepo    repository.DealRepository
	voucherRepo repository.VoucherRepository
	counties    CountyService
	now         func() time.Time
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	dealRepo repository.DealRepository,
	voucherRepo repository.VoucherRepository,
	counties CountyService,
) InventoryService {
	return &inventoryService{
		dealRepo:    dealRepo,
		voucherRepo: voucherRepo,
		counties:    counties,
		now:         time.Now,
	}
}

// monthWindow returns the [start, end) bounds of the calendar month that
// contains t, in t's location.
func monthWindow(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}

// CheckAllowance reports whether a business could issue the requested number
// of vouchers this calendar month
func (s *inventoryService) CheckAllowance(ctx context.Context, countyID, businessID string, requested int) (*dto.AllowanceResponse, error) {
	business, err := s.counties.GetActiveBusiness(ctx, countyID, businessID)
	if err != nil {
		return nil, err
	}

	from, until := monthWindow(s.now())
	issued, err := s.voucherRepo.CountIssuedInWindow(ctx, countyID, businessID, from, until)
	if err != nil {
		return nil, err
	}

	resp := &dto.AllowanceResponse{
		Allowed:            true,
		CurrentMonthIssued: issued,
		Requested:          requested,
	}
	if business.MonthlyVoucherAllowance == nil {
		return resp, nil
	}

	allowance := *business.MonthlyVoucherAllowance
	remaining := allowance - issued
	if remaining < 0 {
		remaining = 0
	}
	resp.MonthlyAllowance = &allowance
	resp.Remaining = &remaining
	if issued+requested > allowance {
		resp.Allowed = false
		resp.Excess = issued + requested - allowance
	}
	return resp, nil
}

// EnsureAllowance returns an AllowanceExceededError when issuing the
// requested count would exceed the monthly allowance
func (s *inventoryService) EnsureAllowance(ctx context.Context, business *domain.Business, requested int) error {
	if business.MonthlyVoucherAllowance == nil {
		return nil
	}

	from, until := monthWindow(s.now())
	issued, err := s.voucherRepo.CountIssuedInWindow(ctx, business.CountyID, business.ID, from, until)
	if err != nil {
		return err
	}
	return domain.CheckAllowance(business.MonthlyVoucherAllowance, issued, requested)
}

// Grant materializes additional available vouchers for an active deal
func (s *inventoryService) Grant(ctx context.Context, countyID string, actor Actor, req *dto.GrantVouchersRequest) (*dto.GrantVouchersResponse, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, errors.New(msg)
	}

	deal, err := s.dealRepo.GetByID(ctx, countyID, req.DealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}
	if deal.Status != domain.DealStatusActive {
		return nil, domain.ErrDealNotActive
	}

	business, err := s.counties.GetActiveBusiness(ctx, countyID, deal.BusinessID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && business.OwnerUserID != actor.UserID {
		return nil, domain.ErrNotDealOwner
	}

	// Fast-fail checks; the repository re-runs both under a business row
	// lock inside the insert transaction.
	counts, err := s.voucherRepo.CountByDeal(ctx, countyID, deal.ID)
	if err != nil {
		return nil, err
	}
	existing := 0
	for _, n := range counts {
		existing += n
	}
	if err := domain.CheckQuantityLimit(deal.VoucherQuantityLimit, existing, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.EnsureAllowance(ctx, business, req.Quantity); err != nil {
		return nil, err
	}

	vouchers, err := domain.MaterializeVouchers(deal, req.Quantity)
	if err != nil {
		return nil, err
	}
	from, until := monthWindow(s.now())
	if err := s.voucherRepo.CreateBatch(ctx, deal, vouchers, from, until); err != nil {
		return nil, err
	}

	return &dto.GrantVouchersResponse{
		DealID:  deal.ID,
		Granted: len(vouchers),
	}, nil
}

// AssignVoucher performs the conditional available -> assigned update on a
// single voucher. Assigned vouchers satisfy the redemption precondition, so
// this is the path for handing vouchers out without a purchase.
func (s *inventoryService) AssignVoucher(ctx context.Context, countyID, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(ctx, countyID, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, domain.ErrVoucherNotFound
	}

	if err := s.voucherRepo.Assign(ctx, countyID, voucherID); err != nil {
		return nil, err
	}
	voucher.Status = domain.VoucherStatusAssigned
	return voucher, nil
}

// Counts reports the per-status voucher inventory for a deal
func (s *inventoryService) Counts(ctx context.Context, countyID, dealID string) (*dto.VoucherCountsResponse, error) {
	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}

	counts, err := s.voucherRepo.CountByDeal(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}

	return &dto.VoucherCountsResponse{
		DealID:    dealID,
		Available: counts[domain.VoucherStatusAvailable],
		Assigned:  counts[domain.VoucherStatusAssigned],
		Redeemed:  counts[domain.VoucherStatusRedeemed],
	}, nil
}
