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

// PurchaseHandler handles purchase allocation HTTP requests
type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// Create handles POST /counties/:county/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	actor := actorFromContext(c)
	ctx, span := telemetry.StartSpan(c.Request.Context(), "purchase.create")
	defer span.End()
	telemetry.SetSpanAttributes(ctx,
		attribute.String(telemetry.AttrCountyID, CountyID(c)),
		attribute.String(telemetry.AttrDealID, req.DealID),
		attribute.String(telemetry.AttrUserID, actor.UserID),
	)

	purchase, err := h.purchaseService.Create(ctx, CountyID(c), actor.UserID, &req)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "purchase")
	middleware.SetAuditResourceID(c, purchase.PurchaseID)
	c.JSON(http.StatusCreated, response.Success(purchase))
}

// Get handles GET /counties/:county/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchase, err := h.purchaseService.Get(c.Request.Context(), CountyID(c), c.Param("id"), actorFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(purchase))
}
