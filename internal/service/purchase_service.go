package service

import (
	"context"
	"errors"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// PurchaseEvent describes a committed purchase for the passive monitor.
type PurchaseEvent struct {
	CountyID string
	DealID   string
	UserID   string
	At       time.Time
}

// PurchaseFailureEvent describes an allocation that failed after payment was
// already confirmed.
type PurchaseFailureEvent struct {
	CountyID        string
	DealID          string
	UserID          string
	PaymentIntentID string
	Reason          string
	At              time.Time
}

// PurchaseObserver receives purchase outcomes after they are decided. It must
// never block and can never affect the purchase itself.
type PurchaseObserver interface {
	PurchaseCompleted(ev PurchaseEvent)
	PurchaseFailed(ev PurchaseFailureEvent)
}

// PurchaseService defines the interface for the purchase allocator
type PurchaseService interface {
	// Create binds a confirmed payment intent to exactly one voucher. A retry
	// carrying an intent this user already consumed for the same deal returns
	// the original result instead of an error.
	Create(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	// Get retrieves a purchase, visible only to its buyer and to admins
	Get(ctx context.Context, countyID, purchaseID string, actor Actor) (*domain.Purchase, error)
}

// purchaseService implements PurchaseService
type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	dealRepo     repository.DealRepository
	voucherRepo  repository.VoucherRepository
	observer     PurchaseObserver
	txTimeout    time.Duration
}

// NewPurchaseService creates a new PurchaseService. The observer may be nil
// when no monitor is wired.
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	dealRepo repository.DealRepository,
	voucherRepo repository.VoucherRepository,
	observer PurchaseObserver,
	txTimeout time.Duration,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		dealRepo:     dealRepo,
		voucherRepo:  voucherRepo,
		observer:     observer,
		txTimeout:    txTimeout,
	}
}

// Create binds a confirmed payment intent to exactly one voucher
func (s *purchaseService) Create(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, errors.New(msg)
	}

	// Fast pre-check outside the transaction. The allocator re-checks
	// everything inside it; this only short-circuits the obvious cases.
	deal, err := s.dealRepo.GetByID(ctx, countyID, req.DealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrDealNotFound
	}
	if err := deal.IsPurchasable(time.Now()); err != nil {
		s.notifyFailure(countyID, userID, req, err)
		return nil, err
	}

	allocCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	result, err := s.purchaseRepo.Allocate(allocCtx, repository.AllocationParams{
		CountyID:        countyID,
		DealID:          req.DealID,
		UserID:          userID,
		PaymentIntentID: req.PaymentIntentID,
		PaymentProvider: req.PaymentProvider,
		AmountCents:     req.AmountCents,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPaymentIntentAlreadyUsed) {
			if resp, replayErr := s.replay(ctx, countyID, userID, req); replayErr == nil && resp != nil {
				return resp, nil
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrPurchaseTransactionFailed
		}
		s.notifyFailure(countyID, userID, req, err)
		return nil, err
	}

	if s.observer != nil {
		s.observer.PurchaseCompleted(PurchaseEvent{
			CountyID: countyID,
			DealID:   req.DealID,
			UserID:   userID,
			At:       result.Purchase.CreatedAt,
		})
	}

	return &dto.PurchaseResponse{
		PurchaseID:      result.Purchase.ID,
		VoucherID:       result.Voucher.ID,
		RedemptionToken: result.Voucher.RedemptionToken,
		ExpiresAt:       result.Voucher.ExpiresAt,
	}, nil
}

// replay resolves a duplicate payment intent back to its original purchase.
// Only the same buyer retrying the same deal qualifies; anything else keeps
// the conflict error.
func (s *purchaseService) replay(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.GetByPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if purchase == nil || purchase.CountyID != countyID || purchase.UserID != userID || purchase.DealID != req.DealID {
		return nil, domain.ErrPaymentIntentAlreadyUsed
	}

	voucher, err := s.voucherRepo.GetByID(ctx, countyID, purchase.VoucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, domain.ErrVoucherNotFound
	}

	return &dto.PurchaseResponse{
		PurchaseID:      purchase.ID,
		VoucherID:       voucher.ID,
		RedemptionToken: voucher.RedemptionToken,
		ExpiresAt:       voucher.ExpiresAt,
	}, nil
}

func (s *purchaseService) notifyFailure(countyID, userID string, req *dto.CreatePurchaseRequest, cause error) {
	if s.observer == nil {
		return
	}
	s.observer.PurchaseFailed(PurchaseFailureEvent{
		CountyID:        countyID,
		DealID:          req.DealID,
		UserID:          userID,
		PaymentIntentID: req.PaymentIntentID,
		Reason:          cause.Error(),
		At:              time.Now(),
	})
}

// Get retrieves a purchase, visible only to its buyer and to admins
func (s *purchaseService) Get(ctx context.Context, countyID, purchaseID string, actor Actor) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, countyID, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrPurchaseNotFound
	}
	if !actor.IsAdmin() && purchase.UserID != actor.UserID {
		return nil, domain.ErrPurchaseNotFound
	}
	return purchase, nil
}
