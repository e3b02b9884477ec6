package repository

import (
	"context"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

// CountyRepository defines data access for the county registry
type CountyRepository interface {
	// Create creates a new county
	Create(ctx context.Context, county *domain.County) error
	// GetByID retrieves a county by ID, nil if not found
	GetByID(ctx context.Context, id string) (*domain.County, error)
	// GetBySlug retrieves a county by slug, nil if not found
	GetBySlug(ctx context.Context, slug string) (*domain.County, error)
	// List retrieves counties with pagination
	List(ctx context.Context, page, limit int, isActive *bool) ([]*domain.County, int, error)
}

// BusinessRepository defines data access for vendor accounts.
// Every method is scoped to a county; cross-county reads are impossible
// by construction.
type BusinessRepository interface {
	// Create creates a new business
	Create(ctx context.Context, business *domain.Business) error
	// GetByID retrieves a business within a county, nil if not found
	GetByID(ctx context.Context, countyID, id string) (*domain.Business, error)
}
