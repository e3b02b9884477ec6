package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// InventoryHandler handles voucher inventory and allowance HTTP requests
type InventoryHandler struct {
	inventoryService service.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// CheckAllowance handles GET /counties/:county/businesses/:id/allowance
func (h *InventoryHandler) CheckAllowance(c *gin.Context) {
	requested := 0
	if raw := c.Query("requested"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, response.BadRequest("requested must be a non-negative integer"))
			return
		}
		requested = n
	}

	allowance, err := h.inventoryService.CheckAllowance(c.Request.Context(), CountyID(c), c.Param("id"), requested)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(allowance))
}

// Grant handles POST /counties/:county/deals/:id/vouchers/grant
func (h *InventoryHandler) Grant(c *gin.Context) {
	var req dto.GrantVouchersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	req.DealID = c.Param("id")
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	result, err := h.inventoryService.Grant(c.Request.Context(), CountyID(c), actorFromContext(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "deal")
	middleware.SetAuditResourceID(c, result.DealID)
	middleware.SetAuditMetadata(c, map[string]interface{}{
		"vouchers_granted": result.Granted,
	})
	c.JSON(http.StatusCreated, response.Success(result))
}

// AssignVoucher handles POST /counties/:county/vouchers/:id/grant. It hands
// a specific voucher out without a purchase, making it redeemable.
func (h *InventoryHandler) AssignVoucher(c *gin.Context) {
	voucher, err := h.inventoryService.AssignVoucher(c.Request.Context(), CountyID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "voucher")
	middleware.SetAuditResourceID(c, voucher.ID)
	c.JSON(http.StatusOK, response.Success(voucher))
}

// Counts handles GET /counties/:county/deals/:id/vouchers
func (h *InventoryHandler) Counts(c *gin.Context) {
	counts, err := h.inventoryService.Counts(c.Request.Context(), CountyID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(counts))
}
