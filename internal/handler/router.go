package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
)

// Handlers groups everything the router wires up
type Handlers struct {
	Health     *HealthHandler
	County     *CountyHandler
	Deal       *DealHandler
	Purchase   *PurchaseHandler
	Redemption *RedemptionHandler
	Inventory  *InventoryHandler
	ReviewTask *ReviewTaskHandler

	CountyMW    gin.HandlerFunc
	JWTSecret   string
	AuditLogger *middleware.AuditLogger
}

// SetupRoutes configures the full route tree. Everything except the health
// probes requires a valid token; county-scoped routes additionally pass
// through county resolution.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)

	router.Use(middleware.JWTMiddleware(&middleware.JWTConfig{
		Secret:    h.JWTSecret,
		SkipPaths: []string{"/health", "/ready"},
	}))
	if h.AuditLogger != nil {
		router.Use(middleware.AuditMiddleware(h.AuditLogger))
	}

	v1 := router.Group("/api/v1")

	counties := v1.Group("/counties")
	counties.POST("", middleware.RequireRole(middleware.RoleAdmin), h.County.Create)
	counties.GET("", h.County.List)

	county := counties.Group("/:county")
	county.Use(h.CountyMW)

	deals := county.Group("/deals")
	deals.POST("", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Deal.Create)
	deals.GET("", h.Deal.List)
	deals.GET("/:id", h.Deal.Get)
	deals.PATCH("/:id", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Deal.Update)
	deals.DELETE("/:id", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Deal.Delete)
	deals.POST("/:id/activate", middleware.RequireRole(middleware.RoleAdmin), h.Deal.Activate)
	deals.POST("/:id/expire", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Deal.Expire)
	deals.POST("/:id/guard", middleware.RequireRole(middleware.RoleAdmin), h.Deal.SetGuardStatus)
	deals.GET("/:id/vouchers", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Inventory.Counts)
	deals.POST("/:id/vouchers/grant", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Inventory.Grant)

	purchases := county.Group("/purchases")
	purchases.POST("", h.Purchase.Create)
	purchases.GET("/:id", h.Purchase.Get)

	redemptions := county.Group("/redemptions")
	redemptions.Use(middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin))
	redemptions.POST("", h.Redemption.Redeem)
	redemptions.GET("/:token", h.Redemption.Lookup)

	vouchers := county.Group("/vouchers")
	vouchers.POST("/:id/grant", middleware.RequireRole(middleware.RoleAdmin), h.Inventory.AssignVoucher)

	businesses := county.Group("/businesses")
	businesses.GET("/:id/allowance", middleware.RequireRole(middleware.RoleVendor, middleware.RoleAdmin), h.Inventory.CheckAllowance)

	reviewTasks := county.Group("/review-tasks")
	reviewTasks.Use(middleware.RequireRole(middleware.RoleAdmin))
	reviewTasks.GET("", h.ReviewTask.List)
	reviewTasks.POST("/:id/resolve", h.ReviewTask.Resolve)
}
