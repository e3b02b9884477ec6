package dto

import (
	"regexp"
	"time"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateCountyRequest is the payload for provisioning a county
type CreateCountyRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// Validate checks the slug format
func (r *CreateCountyRequest) Validate() (bool, string) {
	if !slugPattern.MatchString(r.Slug) {
		return false, "slug must be lowercase alphanumeric with hyphens"
	}
	if len(r.Slug) > 63 {
		return false, "slug must be 63 characters or fewer"
	}
	return true, ""
}

// CountyResponse is the API shape of a county
type CountyResponse struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// NewCountyResponse converts a domain county to its API shape
func NewCountyResponse(c *domain.County) *CountyResponse {
	return &CountyResponse{
		ID:        c.ID,
		Slug:      c.Slug,
		Name:      c.Name,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// CountyListFilter carries pagination and activity filter for county listings
type CountyListFilter struct {
	Page     int   `form:"page"`
	Limit    int   `form:"limit"`
	IsActive *bool `form:"is_active"`
}

// SetDefaults applies default pagination values
func (f *CountyListFilter) SetDefaults() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}
