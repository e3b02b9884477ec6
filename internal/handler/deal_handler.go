package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
	"github.com/terrep263/lakedirectory-sub002/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// DealHandler handles deal lifecycle HTTP requests
type DealHandler struct {
	dealService service.DealService
}

// NewDealHandler creates a new DealHandler
func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{
		dealService: dealService,
	}
}

// Create handles POST /counties/:county/deals
func (h *DealHandler) Create(c *gin.Context) {
	var req dto.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "deal.create")
	defer span.End()

	deal, err := h.dealService.Create(ctx, CountyID(c), actorFromContext(c), &req)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, deal.ID)
	c.JSON(http.StatusCreated, response.Success(dto.NewDealResponse(deal)))
}

// Get handles GET /counties/:county/deals/:id
func (h *DealHandler) Get(c *gin.Context) {
	deal, err := h.dealService.Get(c.Request.Context(), CountyID(c), c.Param("id"), actorFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewDealResponse(deal)))
}

// List handles GET /counties/:county/deals
func (h *DealHandler) List(c *gin.Context) {
	var filter dto.DealListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	deals, total, err := h.dealService.List(c.Request.Context(), CountyID(c), actorFromContext(c), &filter)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]*dto.DealResponse, len(deals))
	for i, deal := range deals {
		items[i] = dto.NewDealResponse(deal)
	}
	c.JSON(http.StatusOK, response.Paginated(items, filter.Page, filter.Limit, int64(total)))
}

// Update handles PATCH /counties/:county/deals/:id
func (h *DealHandler) Update(c *gin.Context) {
	var req dto.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	deal, err := h.dealService.Update(c.Request.Context(), CountyID(c), c.Param("id"), actorFromContext(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, deal.ID)
	c.JSON(http.StatusOK, response.Success(dto.NewDealResponse(deal)))
}

// Activate handles POST /counties/:county/deals/:id/activate
func (h *DealHandler) Activate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "deal.activate")
	defer span.End()
	telemetry.SetSpanAttributes(ctx, attribute.String(telemetry.AttrDealID, c.Param("id")))

	resp, err := h.dealService.Activate(ctx, CountyID(c), c.Param("id"), actorFromContext(c))
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, resp.DealID)
	middleware.SetAuditMetadata(c, map[string]interface{}{
		"vouchers_issued": resp.VouchersIssued,
	})
	c.JSON(http.StatusOK, response.Success(resp))
}

// Expire handles POST /counties/:county/deals/:id/expire
func (h *DealHandler) Expire(c *gin.Context) {
	deal, err := h.dealService.Expire(c.Request.Context(), CountyID(c), c.Param("id"), actorFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, deal.ID)
	c.JSON(http.StatusOK, response.Success(dto.NewDealResponse(deal)))
}

// SetGuardStatus handles POST /counties/:county/deals/:id/guard
func (h *DealHandler) SetGuardStatus(c *gin.Context) {
	var req dto.SetGuardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	deal, err := h.dealService.SetGuardStatus(c.Request.Context(), CountyID(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, deal.ID)
	middleware.SetAuditMetadata(c, map[string]interface{}{
		"guard_status": string(deal.GuardStatus),
	})
	c.JSON(http.StatusOK, response.Success(dto.NewDealResponse(deal)))
}

// Delete handles DELETE /counties/:county/deals/:id
func (h *DealHandler) Delete(c *gin.Context) {
	if err := h.dealService.Delete(c.Request.Context(), CountyID(c), c.Param("id"), actorFromContext(c)); err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, c.Param("id"))
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Deal deleted successfully"}))
}
