package service

import (
	"context"
	"errors"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// DealService defines the interface for the deal lifecycle
type DealService interface {
	// Create creates a draft deal in the inactive state
	Create(ctx context.Context, countyID string, actor Actor, req *dto.CreateDealRequest) (*domain.Deal, error)
	// Get retrieves a deal. Non-public deals are only visible to their owner
	// and to admins; everyone else gets not-found.
	Get(ctx context.Context, countyID, dealID string, actor Actor) (*domain.Deal, error)
	// List retrieves deals within a county. Admins see everything; everyone
	// else sees only active, approved deals.
	List(ctx context.Context, countyID string, actor Actor, filter *dto.DealListFilter) ([]*domain.Deal, int, error)
	// Update edits an inactive deal
	Update(ctx context.Context, countyID, dealID string, actor Actor, req *dto.UpdateDealRequest) (*domain.Deal, error)
	// Activate transitions an inactive deal to active and materializes its
	// voucher inventory atomically
	Activate(ctx context.Context, countyID, dealID string, actor Actor) (*dto.ActivateDealResponse, error)
	// Expire transitions an active deal to its terminal state
	Expire(ctx context.Context, countyID, dealID string, actor Actor) (*domain.Deal, error)
	// SetGuardStatus records the advisory guard verdict on a deal
	SetGuardStatus(ctx context.Context, countyID, dealID string, req *dto.SetGuardStatusRequest) (*domain.Deal, error)
	// Delete removes a deal that has no vouchers
	Delete(ctx context.Context, countyID, dealID string, actor Actor) error
}

// dealService implements DealService
type dealService struct {
	dealRepo     repository.DealRepository
	businessRepo repository.BusinessRepository
	inventory    InventoryService
}

// NewDealService creates a new DealService
func NewDealService(
	dealRepo repository.DealRepository,
	businessRepo repository.BusinessRepository,
	inventory InventoryService,
) DealService {
	return &dealService{
		dealRepo:     dealRepo,
		businessRepo: businessRepo,
		inventory:    inventory,
	}
}

// authorizeOwner loads the deal's business and verifies the actor owns it.
// Admins pass unconditionally.
func (s *dealService) authorizeOwner(ctx context.Context, actor Actor, deal *domain.Deal) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, deal.CountyID, deal.BusinessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}
	if !actor.IsAdmin() && business.OwnerUserID != actor.UserID {
		return nil, domain.ErrNotDealOwner
	}
	return business, nil
}

// Create creates a draft deal in the inactive state
func (s *dealService) Create(ctx context.Context, countyID string, actor Actor, req *dto.CreateDealRequest) (*domain.Deal, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, errors.New(msg)
	}

	business, err := s.businessRepo.GetByID(ctx, countyID, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}
	if !business.IsActive() {
		return nil, domain.ErrBusinessNotActive
	}
	if !actor.IsAdmin() && business.OwnerUserID != actor.UserID {
		return nil, domain.ErrNotDealOwner
	}

	deal, err := domain.NewDeal(countyID, req.BusinessID, req.Title)
	if err != nil {
		return nil, err
	}
	deal.Description = req.Description
	deal.Category = req.Category
	deal.OriginalValueCents = req.OriginalValueCents
	deal.DealPriceCents = req.DealPriceCents
	deal.RedeemStart = req.RedeemStart
	deal.RedeemEnd = req.RedeemEnd
	deal.VoucherQuantityLimit = req.VoucherQuantityLimit

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, err
	}

	return deal, nil
}

// Get retrieves a deal, hiding non-public deals from non-owners
func (s *dealService) Get(ctx context.Context, countyID, dealID string, actor Actor) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}

	public := deal.Status == domain.DealStatusActive && deal.GuardStatus == domain.GuardStatusApproved
	if public || actor.IsAdmin() {
		return deal, nil
	}

	if _, err := s.authorizeOwner(ctx, actor, deal); err != nil {
		// Non-owners must not learn that a draft exists.
		return nil, domain.ErrDealNotFound
	}
	return deal, nil
}

// List retrieves deals within a county
func (s *dealService) List(ctx context.Context, countyID string, actor Actor, filter *dto.DealListFilter) ([]*domain.Deal, int, error) {
	filter.SetDefaults()
	publicOnly := !actor.IsAdmin()
	offset := (filter.Page - 1) * filter.Limit
	return s.dealRepo.List(ctx, countyID, publicOnly, filter.Limit, offset)
}

// Update edits an inactive deal
func (s *dealService) Update(ctx context.Context, countyID, dealID string, actor Actor, req *dto.UpdateDealRequest) (*domain.Deal, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, errors.New(msg)
	}

	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}
	if _, err := s.authorizeOwner(ctx, actor, deal); err != nil {
		return nil, err
	}
	if !deal.IsEditable() {
		return nil, domain.ErrDealNotInactive
	}

	if req.Title != nil {
		deal.Title = *req.Title
	}
	if req.Description != nil {
		deal.Description = *req.Description
	}
	if req.Category != nil {
		deal.Category = *req.Category
	}
	if req.OriginalValueCents != nil {
		deal.OriginalValueCents = *req.OriginalValueCents
	}
	if req.DealPriceCents != nil {
		deal.DealPriceCents = *req.DealPriceCents
	}
	if req.RedeemStart != nil {
		deal.RedeemStart = req.RedeemStart
	}
	if req.RedeemEnd != nil {
		deal.RedeemEnd = req.RedeemEnd
	}
	if req.VoucherQuantityLimit != nil {
		deal.VoucherQuantityLimit = *req.VoucherQuantityLimit
	}

	if deal.OriginalValueCents > 0 && deal.DealPriceCents > 0 {
		if err := deal.ValidatePricing(); err != nil {
			return nil, err
		}
	}
	if deal.RedeemStart != nil && deal.RedeemEnd != nil && !deal.RedeemEnd.After(*deal.RedeemStart) {
		return nil, errors.New("redeem window end must be after start")
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}

	return deal, nil
}

// Activate transitions an inactive deal to active and materializes its
// voucher inventory
func (s *dealService) Activate(ctx context.Context, countyID, dealID string, actor Actor) (*dto.ActivateDealResponse, error) {
	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}

	business, err := s.authorizeOwner(ctx, actor, deal)
	if err != nil {
		return nil, err
	}
	if !business.IsActive() {
		return nil, domain.ErrBusinessNotActive
	}

	previous := deal.Status
	if err := deal.Activate(); err != nil {
		return nil, err
	}

	if err := s.inventory.EnsureAllowance(ctx, business, deal.VoucherQuantityLimit); err != nil {
		return nil, err
	}

	vouchers, err := domain.MaterializeVouchers(deal, deal.VoucherQuantityLimit)
	if err != nil {
		return nil, err
	}
	from, until := monthWindow(time.Now())
	if err := s.dealRepo.ActivateWithVouchers(ctx, deal, vouchers, from, until); err != nil {
		return nil, err
	}

	return &dto.ActivateDealResponse{
		DealID:         deal.ID,
		PreviousStatus: string(previous),
		NewStatus:      string(deal.Status),
		ActivatedAt:    *deal.ActivatedAt,
		VouchersIssued: len(vouchers),
	}, nil
}

// Expire transitions an active deal to its terminal state
func (s *dealService) Expire(ctx context.Context, countyID, dealID string, actor Actor) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}
	if _, err := s.authorizeOwner(ctx, actor, deal); err != nil {
		return nil, err
	}

	if err := deal.Expire(); err != nil {
		return nil, err
	}
	if err := s.dealRepo.MarkExpired(ctx, countyID, dealID); err != nil {
		return nil, err
	}

	return deal, nil
}

// SetGuardStatus records the advisory guard verdict on a deal
func (s *dealService) SetGuardStatus(ctx context.Context, countyID, dealID string, req *dto.SetGuardStatusRequest) (*domain.Deal, error) {
	status := domain.GuardStatus(req.Status)
	if !status.IsValid() {
		return nil, errors.New("invalid guard status")
	}

	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}

	if err := s.dealRepo.UpdateGuardStatus(ctx, countyID, dealID, status); err != nil {
		return nil, err
	}
	deal.GuardStatus = status

	return deal, nil
}

// Delete removes a deal that has no vouchers
func (s *dealService) Delete(ctx context.Context, countyID, dealID string, actor Actor) error {
	deal, err := s.dealRepo.GetByID(ctx, countyID, dealID)
	if err != nil {
		return err
	}
	if deal == nil {
		return domain.ErrDealNotFound
	}
	if _, err := s.authorizeOwner(ctx, actor, deal); err != nil {
		return err
	}

	return s.dealRepo.Delete(ctx, countyID, dealID)
}
