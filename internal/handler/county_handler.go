package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// CountyHandler handles county provisioning HTTP requests. These routes sit
// outside the county-scoped tree.
type CountyHandler struct {
	countyService service.CountyService
}

// NewCountyHandler creates a new CountyHandler
func NewCountyHandler(countyService service.CountyService) *CountyHandler {
	return &CountyHandler{
		countyService: countyService,
	}
}

// Create handles POST /counties
func (h *CountyHandler) Create(c *gin.Context) {
	var req dto.CreateCountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	county, err := h.countyService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "county")
	middleware.SetAuditResourceID(c, county.ID)
	c.JSON(http.StatusCreated, response.Success(dto.NewCountyResponse(county)))
}

// List handles GET /counties
func (h *CountyHandler) List(c *gin.Context) {
	var filter dto.CountyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	counties, total, err := h.countyService.List(c.Request.Context(), &filter)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]*dto.CountyResponse, len(counties))
	for i, county := range counties {
		items[i] = dto.NewCountyResponse(county)
	}
	c.JSON(http.StatusOK, response.Paginated(items, filter.Page, filter.Limit, int64(total)))
}
