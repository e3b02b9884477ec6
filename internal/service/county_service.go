package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

var (
	ErrCountySlugTaken = errors.New("county with this slug already exists")
)

// CountyService defines the interface for the county registry
type CountyService interface {
	// Create provisions a new county
	Create(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error)
	// Resolve looks up an active county by slug. It is the tenant entry
	// point: every county-scoped request passes through it.
	Resolve(ctx context.Context, slug string) (*domain.County, error)
	// ResolveByID looks up an active county by id, for requests that carry
	// only the JWT county claim
	ResolveByID(ctx context.Context, id string) (*domain.County, error)
	// List retrieves counties with pagination
	List(ctx context.Context, filter *dto.CountyListFilter) ([]*domain.County, int, error)
	// GetActiveBusiness retrieves a business within a county and verifies it
	// is in good standing
	GetActiveBusiness(ctx context.Context, countyID, businessID string) (*domain.Business, error)
}

// countyService implements CountyService
type countyService struct {
	countyRepo   repository.CountyRepository
	businessRepo repository.BusinessRepository
}

// NewCountyService creates a new CountyService
func NewCountyService(countyRepo repository.CountyRepository, businessRepo repository.BusinessRepository) CountyService {
	return &countyService{
		countyRepo:   countyRepo,
		businessRepo: businessRepo,
	}
}

// Create provisions a new county
func (s *countyService) Create(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, errors.New(msg)
	}

	existing, err := s.countyRepo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCountySlugTaken
	}

	now := time.Now()
	county := &domain.County{
		ID:        uuid.New().String(),
		Slug:      req.Slug,
		Name:      req.Name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.countyRepo.Create(ctx, county); err != nil {
		return nil, err
	}

	return county, nil
}

// Resolve looks up an active county by slug
func (s *countyService) Resolve(ctx context.Context, slug string) (*domain.County, error) {
	if slug == "" {
		return nil, domain.ErrCountyContextRequired
	}

	county, err := s.countyRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if county == nil || county.DeletedAt != nil {
		return nil, domain.ErrCountyNotFound
	}
	if !county.IsActive {
		return nil, domain.ErrCountyInactive
	}
	return county, nil
}

// ResolveByID looks up an active county by id
func (s *countyService) ResolveByID(ctx context.Context, id string) (*domain.County, error) {
	if id == "" {
		return nil, domain.ErrCountyContextRequired
	}

	county, err := s.countyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if county == nil || county.DeletedAt != nil {
		return nil, domain.ErrCountyNotFound
	}
	if !county.IsActive {
		return nil, domain.ErrCountyInactive
	}
	return county, nil
}

// List retrieves counties with pagination
func (s *countyService) List(ctx context.Context, filter *dto.CountyListFilter) ([]*domain.County, int, error) {
	filter.SetDefaults()
	return s.countyRepo.List(ctx, filter.Page, filter.Limit, filter.IsActive)
}

// GetActiveBusiness retrieves a business within a county and verifies it is
// in good standing
func (s *countyService) GetActiveBusiness(ctx context.Context, countyID, businessID string) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, countyID, businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}
	if !business.IsActive() {
		return nil, domain.ErrBusinessNotActive
	}
	return business, nil
}
