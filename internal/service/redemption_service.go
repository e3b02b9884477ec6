package service

import (
	"context"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// RedemptionService defines the interface for point-of-sale voucher redemption
type RedemptionService interface {
	// Redeem performs the terminal assigned -> redeemed transition. The actor
	// must belong to the business the voucher was issued against; admins may
	// redeem on any business's behalf.
	Redeem(ctx context.Context, countyID string, actor Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error)
	// Lookup retrieves a voucher by token for pre-redemption display at the
	// point of sale, with the same business scoping as Redeem
	Lookup(ctx context.Context, countyID string, actor Actor, token string) (*domain.Voucher, error)
}

// redemptionService implements RedemptionService
type redemptionService struct {
	voucherRepo repository.VoucherRepository
}

// NewRedemptionService creates a new RedemptionService
func NewRedemptionService(voucherRepo repository.VoucherRepository) RedemptionService {
	return &redemptionService{
		voucherRepo: voucherRepo,
	}
}

// resolve fetches and authorizes a voucher by token. Cross-county tokens are
// reported as not found so a token leaks nothing outside its county.
func (s *redemptionService) resolve(ctx context.Context, countyID string, actor Actor, token string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.CountyID != countyID {
		return nil, domain.ErrVoucherNotFound
	}
	if !actor.IsAdmin() && voucher.BusinessID != actor.BusinessID {
		return nil, domain.ErrInvalidForBusiness
	}
	return voucher, nil
}

// Redeem performs the terminal assigned -> redeemed transition
func (s *redemptionService) Redeem(ctx context.Context, countyID string, actor Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
	voucher, err := s.voucherRepo.GetByToken(ctx, req.RedemptionToken)
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.CountyID != countyID {
		return nil, domain.ErrVoucherNotFound
	}

	// The idempotent already-redeemed rejection comes before the business
	// check: a replayed token reports the same outcome no matter who
	// presents it.
	if voucher.Status == domain.VoucherStatusRedeemed {
		return nil, domain.ErrAlreadyRedeemed
	}
	if !actor.IsAdmin() && voucher.BusinessID != actor.BusinessID {
		return nil, domain.ErrInvalidForBusiness
	}
	if voucher.Status == domain.VoucherStatusAvailable {
		return nil, domain.ErrVoucherNotAssigned
	}

	redeemedAt := time.Now()
	if err := s.voucherRepo.Redeem(ctx, countyID, voucher.ID, redeemedAt); err != nil {
		return nil, err
	}

	return &dto.RedeemResponse{
		Redeemed:   true,
		VoucherID:  voucher.ID,
		RedeemedAt: &redeemedAt,
	}, nil
}

// Lookup retrieves a voucher by token for pre-redemption display
func (s *redemptionService) Lookup(ctx context.Context, countyID string, actor Actor, token string) (*domain.Voucher, error) {
	return s.resolve(ctx, countyID, actor, token)
}
