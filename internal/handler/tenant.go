package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// Context keys set by the county middleware
const (
	ContextKeyCountyID   = "resolved_county_id"
	ContextKeyCountySlug = "resolved_county_slug"
)

// HeaderCounty carries the county slug when the route has no :county param.
const HeaderCounty = "X-County"

const countyCacheTTL = 30 * time.Second

// countyCache is a small TTL cache in front of the registry. Counties change
// rarely; a stale entry is at worst 30 seconds of traffic to a just-disabled
// county.
type countyCache struct {
	mu      sync.RWMutex
	entries map[string]countyCacheEntry
}

type countyCacheEntry struct {
	county  *domain.County
	expires time.Time
}

func (c *countyCache) get(key string) (*domain.County, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.county, true
}

func (c *countyCache) put(key string, county *domain.County) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = countyCacheEntry{county: county, expires: time.Now().Add(countyCacheTTL)}
}

// CountyMiddleware resolves the request's county and pins it on the context.
// Resolution order: :county route param, then the JWT county claim, then the
// X-County header. When the JWT carries a county claim it must match the
// resolved county; admins are exempt so platform staff can work across
// counties.
func CountyMiddleware(countyService service.CountyService) gin.HandlerFunc {
	cache := &countyCache{entries: make(map[string]countyCacheEntry)}

	return func(c *gin.Context) {
		county, err := resolveCounty(c, countyService, cache)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		role, _ := middleware.GetRole(c)
		if tokenCounty, ok := middleware.GetTokenCountyID(c); ok && tokenCounty != "" {
			if tokenCounty != county.ID && role != middleware.RoleAdmin {
				c.JSON(http.StatusForbidden, response.Forbidden("Token is not valid for this county"))
				c.Abort()
				return
			}
		}

		c.Set(ContextKeyCountyID, county.ID)
		c.Set(ContextKeyCountySlug, county.Slug)
		c.Next()
	}
}

func resolveCounty(c *gin.Context, countyService service.CountyService, cache *countyCache) (*domain.County, error) {
	if slug := c.Param("county"); slug != "" {
		return resolveCached(cache, "slug:"+slug, func() (*domain.County, error) {
			return countyService.Resolve(c.Request.Context(), slug)
		})
	}
	if id, ok := middleware.GetTokenCountyID(c); ok && id != "" {
		return resolveCached(cache, "id:"+id, func() (*domain.County, error) {
			return countyService.ResolveByID(c.Request.Context(), id)
		})
	}
	if slug := c.GetHeader(HeaderCounty); slug != "" {
		return resolveCached(cache, "slug:"+slug, func() (*domain.County, error) {
			return countyService.Resolve(c.Request.Context(), slug)
		})
	}
	return nil, domain.ErrCountyContextRequired
}

func resolveCached(cache *countyCache, key string, lookup func() (*domain.County, error)) (*domain.County, error) {
	if county, ok := cache.get(key); ok {
		return county, nil
	}
	county, err := lookup()
	if err != nil {
		return nil, err
	}
	cache.put(key, county)
	return county, nil
}

// CountyID returns the county resolved by CountyMiddleware.
func CountyID(c *gin.Context) string {
	if id, exists := c.Get(ContextKeyCountyID); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// actorFromContext builds the acting identity from the JWT claims.
func actorFromContext(c *gin.Context) service.Actor {
	userID, _ := middleware.GetUserID(c)
	businessID, _ := middleware.GetBusinessID(c)
	role, _ := middleware.GetRole(c)
	return service.Actor{
		UserID:     userID,
		BusinessID: businessID,
		Role:       role,
	}
}
