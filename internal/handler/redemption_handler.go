package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// RedemptionHandler handles in-person voucher redemption HTTP requests
type RedemptionHandler struct {
	redemptionService service.RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(redemptionService service.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

// Redeem handles POST /counties/:county/redemptions
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	result, err := h.redemptionService.Redeem(c.Request.Context(), CountyID(c), actorFromContext(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "voucher")
	middleware.SetAuditResourceID(c, result.VoucherID)
	c.JSON(http.StatusOK, response.Success(result))
}

// Lookup handles GET /counties/:county/redemptions/:token for point-of-sale
// display before the staff member commits the redemption.
func (h *RedemptionHandler) Lookup(c *gin.Context) {
	voucher, err := h.redemptionService.Lookup(c.Request.Context(), CountyID(c), actorFromContext(c), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(voucher))
}
