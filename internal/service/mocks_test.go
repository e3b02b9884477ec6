package service

import (
	"context"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// MockCountyRepo is an in-memory CountyRepository
type MockCountyRepo struct {
	counties map[string]*domain.County // keyed by ID
	err      error
}

func NewMockCountyRepo() *MockCountyRepo {
	return &MockCountyRepo{counties: make(map[string]*domain.County)}
}

func (m *MockCountyRepo) Create(ctx context.Context, county *domain.County) error {
	if m.err != nil {
		return m.err
	}
	m.counties[county.ID] = county
	return nil
}

func (m *MockCountyRepo) GetByID(ctx context.Context, id string) (*domain.County, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.counties[id], nil
}

func (m *MockCountyRepo) GetBySlug(ctx context.Context, slug string) (*domain.County, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.counties {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCountyRepo) List(ctx context.Context, page, limit int, isActive *bool) ([]*domain.County, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]*domain.County, 0, len(m.counties))
	for _, c := range m.counties {
		if isActive != nil && c.IsActive != *isActive {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

// MockBusinessRepo is an in-memory BusinessRepository
type MockBusinessRepo struct {
	businesses map[string]*domain.Business
	err        error
}

func NewMockBusinessRepo() *MockBusinessRepo {
	return &MockBusinessRepo{businesses: make(map[string]*domain.Business)}
}

func (m *MockBusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	if m.err != nil {
		return m.err
	}
	m.businesses[business.ID] = business
	return nil
}

func (m *MockBusinessRepo) GetByID(ctx context.Context, countyID, id string) (*domain.Business, error) {
	if m.err != nil {
		return nil, m.err
	}
	b := m.businesses[id]
	if b == nil || b.CountyID != countyID {
		return nil, nil
	}
	return b, nil
}

// MockDealRepo is an in-memory DealRepository with call recording and error
// injection for the write paths
type MockDealRepo struct {
	deals map[string]*domain.Deal

	activatedWith []*domain.Voucher
	expiredIDs    []string

	createErr   error
	updateErr   error
	activateErr error
	deleteErr   error
}

func NewMockDealRepo() *MockDealRepo {
	return &MockDealRepo{deals: make(map[string]*domain.Deal)}
}

func (m *MockDealRepo) Create(ctx context.Context, deal *domain.Deal) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.deals[deal.ID] = deal
	return nil
}

func (m *MockDealRepo) GetByID(ctx context.Context, countyID, id string) (*domain.Deal, error) {
	d := m.deals[id]
	if d == nil || d.CountyID != countyID {
		return nil, nil
	}
	return d, nil
}

func (m *MockDealRepo) List(ctx context.Context, countyID string, publicOnly bool, limit, offset int) ([]*domain.Deal, int, error) {
	out := make([]*domain.Deal, 0, len(m.deals))
	for _, d := range m.deals {
		if d.CountyID != countyID {
			continue
		}
		if publicOnly && (d.Status != domain.DealStatusActive || d.GuardStatus != domain.GuardStatusApproved) {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *MockDealRepo) Update(ctx context.Context, deal *domain.Deal) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.deals[deal.ID]; !ok {
		return domain.ErrDealNotFound
	}
	m.deals[deal.ID] = deal
	return nil
}

func (m *MockDealRepo) UpdateGuardStatus(ctx context.Context, countyID, id string, status domain.GuardStatus) error {
	d := m.deals[id]
	if d == nil || d.CountyID != countyID {
		return domain.ErrDealNotFound
	}
	d.GuardStatus = status
	return nil
}

func (m *MockDealRepo) MarkExpired(ctx context.Context, countyID, id string) error {
	d := m.deals[id]
	if d == nil || d.CountyID != countyID {
		return domain.ErrInvalidDealTransition
	}
	m.expiredIDs = append(m.expiredIDs, id)
	d.Status = domain.DealStatusExpired
	return nil
}

func (m *MockDealRepo) ActivateWithVouchers(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error {
	if m.activateErr != nil {
		return m.activateErr
	}
	m.deals[deal.ID] = deal
	m.activatedWith = vouchers
	return nil
}

func (m *MockDealRepo) Delete(ctx context.Context, countyID, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	d := m.deals[id]
	if d == nil || d.CountyID != countyID {
		return domain.ErrDealNotFound
	}
	if d.Status != domain.DealStatusInactive {
		return domain.ErrDealNotInactive
	}
	delete(m.deals, id)
	return nil
}

// MockVoucherRepo is an in-memory VoucherRepository. allowance stands in for
// the business row the real CreateBatch locks and re-reads; leaving it nil
// disables the insert-time allowance re-check.
type MockVoucherRepo struct {
	vouchers map[string]*domain.Voucher

	issuedInWindow int
	allowance      *int
	countErr       error
	createBatchErr error
	redeemErr      error
	created        []*domain.Voucher
}

func NewMockVoucherRepo() *MockVoucherRepo {
	return &MockVoucherRepo{vouchers: make(map[string]*domain.Voucher)}
}

func (m *MockVoucherRepo) GetByID(ctx context.Context, countyID, id string) (*domain.Voucher, error) {
	v := m.vouchers[id]
	if v == nil || v.CountyID != countyID {
		return nil, nil
	}
	return v, nil
}

func (m *MockVoucherRepo) GetByToken(ctx context.Context, token string) (*domain.Voucher, error) {
	for _, v := range m.vouchers {
		if v.RedemptionToken == token {
			return v, nil
		}
	}
	return nil, nil
}

func (m *MockVoucherRepo) CreateBatch(ctx context.Context, deal *domain.Deal, vouchers []*domain.Voucher, from, until time.Time) error {
	if m.createBatchErr != nil {
		return m.createBatchErr
	}
	existing := 0
	for _, v := range m.vouchers {
		if v.DealID == deal.ID {
			existing++
		}
	}
	if err := domain.CheckQuantityLimit(deal.VoucherQuantityLimit, existing, len(vouchers)); err != nil {
		return err
	}
	if err := domain.CheckAllowance(m.allowance, m.issuedInWindow, len(vouchers)); err != nil {
		return err
	}
	for _, v := range vouchers {
		m.vouchers[v.ID] = v
	}
	m.created = append(m.created, vouchers...)
	return nil
}

func (m *MockVoucherRepo) CountByDeal(ctx context.Context, countyID, dealID string) (map[domain.VoucherStatus]int, error) {
	counts := make(map[domain.VoucherStatus]int)
	for _, v := range m.vouchers {
		if v.CountyID == countyID && v.DealID == dealID {
			counts[v.Status]++
		}
	}
	return counts, nil
}

func (m *MockVoucherRepo) CountIssuedInWindow(ctx context.Context, countyID, businessID string, from, until time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.issuedInWindow, nil
}

func (m *MockVoucherRepo) Assign(ctx context.Context, countyID, voucherID string) error {
	v := m.vouchers[voucherID]
	if v == nil || v.CountyID != countyID || v.Status != domain.VoucherStatusAvailable {
		return domain.ErrVoucherNotAssigned
	}
	v.Status = domain.VoucherStatusAssigned
	return nil
}

func (m *MockVoucherRepo) Redeem(ctx context.Context, countyID, voucherID string, redeemedAt time.Time) error {
	if m.redeemErr != nil {
		return m.redeemErr
	}
	v := m.vouchers[voucherID]
	if v == nil || v.CountyID != countyID || v.Status != domain.VoucherStatusAssigned {
		return domain.ErrAlreadyRedeemed
	}
	v.Status = domain.VoucherStatusRedeemed
	v.RedeemedAt = &redeemedAt
	return nil
}

// MockPurchaseRepo drives the allocator through a configurable outcome
type MockPurchaseRepo struct {
	result *repository.AllocationResult
	err    error

	purchases  map[string]*domain.Purchase // keyed by ID
	byIntent   map[string]*domain.Purchase
	lastParams repository.AllocationParams
}

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{
		purchases: make(map[string]*domain.Purchase),
		byIntent:  make(map[string]*domain.Purchase),
	}
}

func (m *MockPurchaseRepo) Allocate(ctx context.Context, params repository.AllocationParams) (*repository.AllocationResult, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		m.purchases[m.result.Purchase.ID] = m.result.Purchase
		m.byIntent[m.result.Purchase.PaymentIntentID] = m.result.Purchase
	}
	return m.result, nil
}

func (m *MockPurchaseRepo) GetByID(ctx context.Context, countyID, id string) (*domain.Purchase, error) {
	p := m.purchases[id]
	if p == nil || p.CountyID != countyID {
		return nil, nil
	}
	return p, nil
}

func (m *MockPurchaseRepo) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Purchase, error) {
	return m.byIntent[paymentIntentID], nil
}

// MockReviewTaskRepo is an in-memory ReviewTaskRepository
type MockReviewTaskRepo struct {
	tasks map[string]*domain.ReviewTask
}

func NewMockReviewTaskRepo() *MockReviewTaskRepo {
	return &MockReviewTaskRepo{tasks: make(map[string]*domain.ReviewTask)}
}

func (m *MockReviewTaskRepo) Create(ctx context.Context, task *domain.ReviewTask) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *MockReviewTaskRepo) List(ctx context.Context, countyID string, resolved *bool, limit, offset int) ([]*domain.ReviewTask, int, error) {
	out := make([]*domain.ReviewTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.CountyID != countyID {
			continue
		}
		if resolved != nil && t.Resolved != *resolved {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *MockReviewTaskRepo) Resolve(ctx context.Context, countyID, id string) error {
	t := m.tasks[id]
	if t == nil || t.CountyID != countyID {
		return domain.ErrReviewTaskNotFound
	}
	t.Resolved = true
	return nil
}

// MockObserver records purchase outcomes
type MockObserver struct {
	completed []PurchaseEvent
	failed    []PurchaseFailureEvent
}

func (m *MockObserver) PurchaseCompleted(ev PurchaseEvent) {
	m.completed = append(m.completed, ev)
}

func (m *MockObserver) PurchaseFailed(ev PurchaseFailureEvent) {
	m.failed = append(m.failed, ev)
}
