package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- func-field service mocks ---

type mockCountyService struct {
	createFn  func(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error)
	resolveFn func(ctx context.Context, slug string) (*domain.County, error)
	listFn    func(ctx context.Context, filter *dto.CountyListFilter) ([]*domain.County, int, error)
}

func (m *mockCountyService) Create(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, req)
}

func (m *mockCountyService) Resolve(ctx context.Context, slug string) (*domain.County, error) {
	if m.resolveFn == nil {
		panic("resolveFn not configured")
	}
	return m.resolveFn(ctx, slug)
}

func (m *mockCountyService) ResolveByID(ctx context.Context, id string) (*domain.County, error) {
	if id == testCountyID {
		return activeCounty(), nil
	}
	return nil, domain.ErrCountyNotFound
}

func (m *mockCountyService) List(ctx context.Context, filter *dto.CountyListFilter) ([]*domain.County, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, filter)
}

func (m *mockCountyService) GetActiveBusiness(ctx context.Context, countyID, businessID string) (*domain.Business, error) {
	panic("GetActiveBusiness not configured")
}

type mockDealService struct {
	createFn   func(ctx context.Context, countyID string, actor service.Actor, req *dto.CreateDealRequest) (*domain.Deal, error)
	getFn      func(ctx context.Context, countyID, dealID string, actor service.Actor) (*domain.Deal, error)
	listFn     func(ctx context.Context, countyID string, actor service.Actor, filter *dto.DealListFilter) ([]*domain.Deal, int, error)
	activateFn func(ctx context.Context, countyID, dealID string, actor service.Actor) (*dto.ActivateDealResponse, error)
}

func (m *mockDealService) Create(ctx context.Context, countyID string, actor service.Actor, req *dto.CreateDealRequest) (*domain.Deal, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, countyID, actor, req)
}

func (m *mockDealService) Get(ctx context.Context, countyID, dealID string, actor service.Actor) (*domain.Deal, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, countyID, dealID, actor)
}

func (m *mockDealService) List(ctx context.Context, countyID string, actor service.Actor, filter *dto.DealListFilter) ([]*domain.Deal, int, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, countyID, actor, filter)
}

func (m *mockDealService) Update(ctx context.Context, countyID, dealID string, actor service.Actor, req *dto.UpdateDealRequest) (*domain.Deal, error) {
	panic("Update not configured")
}

func (m *mockDealService) Activate(ctx context.Context, countyID, dealID string, actor service.Actor) (*dto.ActivateDealResponse, error) {
	if m.activateFn == nil {
		panic("activateFn not configured")
	}
	return m.activateFn(ctx, countyID, dealID, actor)
}

func (m *mockDealService) Expire(ctx context.Context, countyID, dealID string, actor service.Actor) (*domain.Deal, error) {
	panic("Expire not configured")
}

func (m *mockDealService) SetGuardStatus(ctx context.Context, countyID, dealID string, req *dto.SetGuardStatusRequest) (*domain.Deal, error) {
	panic("SetGuardStatus not configured")
}

func (m *mockDealService) Delete(ctx context.Context, countyID, dealID string, actor service.Actor) error {
	panic("Delete not configured")
}

type mockPurchaseService struct {
	createFn func(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	getFn    func(ctx context.Context, countyID, purchaseID string, actor service.Actor) (*domain.Purchase, error)
}

func (m *mockPurchaseService) Create(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, countyID, userID, req)
}

func (m *mockPurchaseService) Get(ctx context.Context, countyID, purchaseID string, actor service.Actor) (*domain.Purchase, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, countyID, purchaseID, actor)
}

type mockRedemptionService struct {
	redeemFn func(ctx context.Context, countyID string, actor service.Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error)
	lookupFn func(ctx context.Context, countyID string, actor service.Actor, token string) (*domain.Voucher, error)
}

func (m *mockRedemptionService) Redeem(ctx context.Context, countyID string, actor service.Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
	if m.redeemFn == nil {
		panic("redeemFn not configured")
	}
	return m.redeemFn(ctx, countyID, actor, req)
}

func (m *mockRedemptionService) Lookup(ctx context.Context, countyID string, actor service.Actor, token string) (*domain.Voucher, error) {
	if m.lookupFn == nil {
		panic("lookupFn not configured")
	}
	return m.lookupFn(ctx, countyID, actor, token)
}

// --- helpers ---

const testCountyID = "county-1"

// seedAuth fakes the claims the JWT middleware would have set.
func seedAuth(userID, businessID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyBusinessID, businessID)
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

func activeCounty() *domain.County {
	return &domain.County{
		ID:       testCountyID,
		Slug:     "travis",
		Name:     "Travis County",
		IsActive: true,
	}
}

func resolveActive(ctx context.Context, slug string) (*domain.County, error) {
	if slug != "travis" {
		return nil, domain.ErrCountyNotFound
	}
	return activeCounty(), nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *response.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
	return w, &envelope
}

// --- county middleware ---

func TestCountyMiddleware_ResolvesAndPins(t *testing.T) {
	countySvc := &mockCountyService{resolveFn: resolveActive}

	router := gin.New()
	router.GET("/counties/:county/echo",
		seedAuth("user-1", "", middleware.RoleCustomer),
		CountyMiddleware(countySvc),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, response.Success(map[string]string{"county_id": CountyID(c)}))
		},
	)

	w, envelope := doJSON(t, router, http.MethodGet, "/counties/travis/echo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := envelope.Data.(map[string]interface{})
	if data["county_id"] != testCountyID {
		t.Errorf("county_id = %v, want %s", data["county_id"], testCountyID)
	}
}

func TestCountyMiddleware_Rejections(t *testing.T) {
	countySvc := &mockCountyService{
		resolveFn: func(ctx context.Context, slug string) (*domain.County, error) {
			switch slug {
			case "travis":
				return activeCounty(), nil
			case "dormant":
				return nil, domain.ErrCountyInactive
			default:
				return nil, domain.ErrCountyNotFound
			}
		},
	}

	router := gin.New()
	router.GET("/counties/:county/echo",
		seedAuth("user-1", "", middleware.RoleCustomer),
		CountyMiddleware(countySvc),
		func(c *gin.Context) { c.JSON(http.StatusOK, response.Success(nil)) },
	)

	tests := []struct {
		name       string
		slug       string
		wantStatus int
		wantCode   string
	}{
		{"unknown county", "nowhere", http.StatusNotFound, response.ErrCodeCountyNotFound},
		{"inactive county", "dormant", http.StatusForbidden, response.ErrCodeCountyInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, envelope := doJSON(t, router, http.MethodGet, "/counties/"+tt.slug+"/echo", nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.wantCode)
			}
		})
	}
}

func TestCountyMiddleware_TokenCountyMismatch(t *testing.T) {
	countySvc := &mockCountyService{resolveFn: resolveActive}

	newRouter := func(role, tokenCounty string) *gin.Engine {
		router := gin.New()
		router.GET("/counties/:county/echo",
			func(c *gin.Context) {
				c.Set(middleware.ContextKeyUserID, "user-1")
				c.Set(middleware.ContextKeyRole, role)
				c.Set(middleware.ContextKeyCountyID, tokenCounty)
				c.Next()
			},
			CountyMiddleware(countySvc),
			func(c *gin.Context) { c.JSON(http.StatusOK, response.Success(nil)) },
		)
		return router
	}

	w, _ := doJSON(t, newRouter(middleware.RoleCustomer, "county-other"), http.MethodGet, "/counties/travis/echo", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("customer with foreign token: status = %d, want 403", w.Code)
	}

	// Admins work across counties regardless of their token's home county.
	w, _ = doJSON(t, newRouter(middleware.RoleAdmin, "county-other"), http.MethodGet, "/counties/travis/echo", nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin with foreign token: status = %d, want 200", w.Code)
	}

	w, _ = doJSON(t, newRouter(middleware.RoleCustomer, testCountyID), http.MethodGet, "/counties/travis/echo", nil)
	if w.Code != http.StatusOK {
		t.Errorf("matching token: status = %d, want 200", w.Code)
	}
}

func TestCountyMiddleware_FallbackResolution(t *testing.T) {
	countySvc := &mockCountyService{resolveFn: resolveActive}

	// No :county param on the route: resolution falls back to the JWT county
	// claim, then to the X-County header.
	router := gin.New()
	router.GET("/me/vouchers",
		func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, "user-1")
			c.Set(middleware.ContextKeyRole, middleware.RoleCustomer)
			if claim := c.GetHeader("X-Test-Claim"); claim != "" {
				c.Set(middleware.ContextKeyCountyID, claim)
			}
			c.Next()
		},
		CountyMiddleware(countySvc),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, response.Success(map[string]string{"county_id": CountyID(c)}))
		},
	)

	t.Run("jwt claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/vouchers", nil)
		req.Header.Set("X-Test-Claim", testCountyID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/vouchers", nil)
		req.Header.Set(HeaderCounty, "travis")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("no context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/vouchers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var envelope response.Response
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if envelope.Error.Code != response.ErrCodeCountyContextRequired {
			t.Errorf("code = %s", envelope.Error.Code)
		}
	})
}

func TestCountyMiddleware_CachesResolution(t *testing.T) {
	calls := 0
	countySvc := &mockCountyService{
		resolveFn: func(ctx context.Context, slug string) (*domain.County, error) {
			calls++
			return resolveActive(ctx, slug)
		},
	}

	router := gin.New()
	router.GET("/counties/:county/echo",
		seedAuth("user-1", "", middleware.RoleCustomer),
		CountyMiddleware(countySvc),
		func(c *gin.Context) { c.JSON(http.StatusOK, response.Success(nil)) },
	)

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, router, http.MethodGet, "/counties/travis/echo", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	if calls != 1 {
		t.Errorf("registry hit %d times, want 1 (cached)", calls)
	}
}

// --- deal handler ---

func dealRoutes(dealSvc service.DealService, userID, businessID, role string) *gin.Engine {
	countySvc := &mockCountyService{resolveFn: resolveActive}
	h := NewDealHandler(dealSvc)

	router := gin.New()
	group := router.Group("/counties/:county", seedAuth(userID, businessID, role), CountyMiddleware(countySvc))
	group.POST("/deals", h.Create)
	group.GET("/deals", h.List)
	group.GET("/deals/:id", h.Get)
	group.POST("/deals/:id/activate", h.Activate)
	return router
}

func TestDealHandler_Create(t *testing.T) {
	var gotActor service.Actor
	dealSvc := &mockDealService{
		createFn: func(ctx context.Context, countyID string, actor service.Actor, req *dto.CreateDealRequest) (*domain.Deal, error) {
			gotActor = actor
			return &domain.Deal{
				ID:         "deal-1",
				CountyID:   countyID,
				BusinessID: req.BusinessID,
				Title:      req.Title,
				Status:     domain.DealStatusInactive,
			}, nil
		},
	}
	router := dealRoutes(dealSvc, "user-1", "biz-1", middleware.RoleVendor)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/deals", map[string]interface{}{
		"business_id": "biz-1",
		"title":       "Half-price tacos",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if !envelope.Success {
		t.Error("expected success envelope")
	}
	if gotActor.UserID != "user-1" || gotActor.BusinessID != "biz-1" || gotActor.Role != middleware.RoleVendor {
		t.Errorf("actor = %+v", gotActor)
	}
}

func TestDealHandler_Create_InvalidBody(t *testing.T) {
	router := dealRoutes(&mockDealService{}, "user-1", "biz-1", middleware.RoleVendor)

	// Missing required title.
	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/deals", map[string]interface{}{
		"business_id": "biz-1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != response.ErrCodeBadRequest {
		t.Errorf("error = %+v, want BAD_REQUEST", envelope.Error)
	}
}

func TestDealHandler_Get_NotFound(t *testing.T) {
	dealSvc := &mockDealService{
		getFn: func(ctx context.Context, countyID, dealID string, actor service.Actor) (*domain.Deal, error) {
			return nil, domain.ErrDealNotFound
		},
	}
	router := dealRoutes(dealSvc, "user-2", "", middleware.RoleCustomer)

	w, envelope := doJSON(t, router, http.MethodGet, "/counties/travis/deals/deal-9", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if envelope.Error.Code != response.ErrCodeDealNotFound {
		t.Errorf("code = %s, want DEAL_NOT_FOUND", envelope.Error.Code)
	}
}

func TestDealHandler_List_Paginates(t *testing.T) {
	dealSvc := &mockDealService{
		listFn: func(ctx context.Context, countyID string, actor service.Actor, filter *dto.DealListFilter) ([]*domain.Deal, int, error) {
			filter.SetDefaults()
			return []*domain.Deal{{ID: "deal-1", CountyID: countyID, Status: domain.DealStatusActive}}, 41, nil
		},
	}
	router := dealRoutes(dealSvc, "user-2", "", middleware.RoleCustomer)

	w, envelope := doJSON(t, router, http.MethodGet, "/counties/travis/deals?page=2&limit=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if envelope.Meta == nil {
		t.Fatal("expected pagination meta")
	}
	if envelope.Meta.Page != 2 || envelope.Meta.Total != 41 || envelope.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v", envelope.Meta)
	}
}

func TestDealHandler_Activate_MissingFields(t *testing.T) {
	dealSvc := &mockDealService{
		activateFn: func(ctx context.Context, countyID, dealID string, actor service.Actor) (*dto.ActivateDealResponse, error) {
			return nil, &domain.MissingFieldsError{Fields: []string{"redeem_start", "redeem_end"}}
		},
	}
	router := dealRoutes(dealSvc, "user-1", "biz-1", middleware.RoleVendor)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/deals/deal-1/activate", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if envelope.Error.Code != response.ErrCodeMissingRequiredFields {
		t.Errorf("code = %s", envelope.Error.Code)
	}
	if envelope.Error.Details["fields"] != "redeem_start,redeem_end" {
		t.Errorf("details = %+v", envelope.Error.Details)
	}
}

func TestDealHandler_Activate_AllowanceExceeded(t *testing.T) {
	allowance := 100
	dealSvc := &mockDealService{
		activateFn: func(ctx context.Context, countyID, dealID string, actor service.Actor) (*dto.ActivateDealResponse, error) {
			return nil, &domain.AllowanceExceededError{Allowance: allowance, Issued: 95, Requested: 10}
		},
	}
	router := dealRoutes(dealSvc, "user-1", "biz-1", middleware.RoleVendor)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/deals/deal-1/activate", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
	if envelope.Error.Code != response.ErrCodeAllowanceExceeded {
		t.Errorf("code = %s", envelope.Error.Code)
	}
	if envelope.Error.Details["remaining"] != "5" || envelope.Error.Details["excess"] != "5" {
		t.Errorf("details = %+v", envelope.Error.Details)
	}
}

// --- purchase handler ---

func purchaseRoutes(purchaseSvc service.PurchaseService, userID, role string) *gin.Engine {
	countySvc := &mockCountyService{resolveFn: resolveActive}
	h := NewPurchaseHandler(purchaseSvc)

	router := gin.New()
	group := router.Group("/counties/:county", seedAuth(userID, "", role), CountyMiddleware(countySvc))
	group.POST("/purchases", h.Create)
	group.GET("/purchases/:id", h.Get)
	return router
}

func TestPurchaseHandler_Create(t *testing.T) {
	var gotUserID string
	purchaseSvc := &mockPurchaseService{
		createFn: func(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
			gotUserID = userID
			return &dto.PurchaseResponse{
				PurchaseID:      "purchase-1",
				VoucherID:       "voucher-1",
				RedemptionToken: "TOKEN123",
			}, nil
		},
	}
	router := purchaseRoutes(purchaseSvc, "user-1", middleware.RoleCustomer)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/purchases", map[string]interface{}{
		"deal_id":           "deal-1",
		"payment_intent_id": "pi_123",
		"payment_provider":  "stripe",
		"amount_cents":      2500,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if gotUserID != "user-1" {
		t.Errorf("userID = %s, want user-1", gotUserID)
	}
	data := envelope.Data.(map[string]interface{})
	if data["redemption_token"] != "TOKEN123" {
		t.Errorf("token = %v", data["redemption_token"])
	}
}

func TestPurchaseHandler_Create_Conflicts(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"foreign payment intent", domain.ErrPaymentIntentAlreadyUsed, http.StatusConflict, response.ErrCodePaymentIntentAlreadyUsed},
		{"sold out", domain.ErrNoAvailableVouchers, http.StatusConflict, response.ErrCodeNoAvailableVouchers},
		{"timed out", domain.ErrPurchaseTransactionFailed, http.StatusServiceUnavailable, response.ErrCodePurchaseTransactionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purchaseSvc := &mockPurchaseService{
				createFn: func(ctx context.Context, countyID, userID string, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
					return nil, tt.err
				},
			}
			router := purchaseRoutes(purchaseSvc, "user-1", middleware.RoleCustomer)

			w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/purchases", map[string]interface{}{
				"deal_id":           "deal-1",
				"payment_intent_id": "pi_123",
				"payment_provider":  "stripe",
				"amount_cents":      2500,
			})
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if envelope.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", envelope.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestPurchaseHandler_Get(t *testing.T) {
	now := time.Now()
	purchaseSvc := &mockPurchaseService{
		getFn: func(ctx context.Context, countyID, purchaseID string, actor service.Actor) (*domain.Purchase, error) {
			if actor.UserID != "user-1" {
				return nil, domain.ErrPurchaseNotFound
			}
			return &domain.Purchase{ID: purchaseID, CountyID: countyID, UserID: actor.UserID, CreatedAt: now}, nil
		},
	}

	w, _ := doJSON(t, purchaseRoutes(purchaseSvc, "user-1", middleware.RoleCustomer), http.MethodGet, "/counties/travis/purchases/purchase-1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("buyer: status = %d, want 200", w.Code)
	}

	w, envelope := doJSON(t, purchaseRoutes(purchaseSvc, "user-2", middleware.RoleCustomer), http.MethodGet, "/counties/travis/purchases/purchase-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stranger: status = %d, want 404", w.Code)
	}
	if envelope.Error.Code != response.ErrCodePurchaseNotFound {
		t.Errorf("code = %s", envelope.Error.Code)
	}
}

// --- redemption handler ---

func redemptionRoutes(redemptionSvc service.RedemptionService, businessID, role string) *gin.Engine {
	countySvc := &mockCountyService{resolveFn: resolveActive}
	h := NewRedemptionHandler(redemptionSvc)

	router := gin.New()
	group := router.Group("/counties/:county", seedAuth("staff-1", businessID, role), CountyMiddleware(countySvc))
	group.POST("/redemptions", h.Redeem)
	group.GET("/redemptions/:token", h.Lookup)
	return router
}

func TestRedemptionHandler_Redeem(t *testing.T) {
	now := time.Now()
	redemptionSvc := &mockRedemptionService{
		redeemFn: func(ctx context.Context, countyID string, actor service.Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
			return &dto.RedeemResponse{Redeemed: true, VoucherID: "voucher-1", RedeemedAt: &now}, nil
		},
	}
	router := redemptionRoutes(redemptionSvc, "biz-1", middleware.RoleVendor)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/redemptions", map[string]string{
		"redemption_token": "TOKEN123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data := envelope.Data.(map[string]interface{})
	if data["redeemed"] != true {
		t.Errorf("redeemed = %v", data["redeemed"])
	}
}

func TestRedemptionHandler_Redeem_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown token", domain.ErrVoucherNotFound, http.StatusNotFound, response.ErrCodeVoucherNotFound},
		{"wrong business", domain.ErrInvalidForBusiness, http.StatusForbidden, response.ErrCodeInvalidForBusiness},
		{"already redeemed", domain.ErrAlreadyRedeemed, http.StatusConflict, response.ErrCodeAlreadyRedeemed},
		{"never purchased", domain.ErrVoucherNotAssigned, http.StatusConflict, response.ErrCodeVoucherNotAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redemptionSvc := &mockRedemptionService{
				redeemFn: func(ctx context.Context, countyID string, actor service.Actor, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
					return nil, tt.err
				},
			}
			router := redemptionRoutes(redemptionSvc, "biz-1", middleware.RoleVendor)

			w, envelope := doJSON(t, router, http.MethodPost, "/counties/travis/redemptions", map[string]string{
				"redemption_token": "TOKEN123",
			})
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if envelope.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", envelope.Error.Code, tt.wantCode)
			}
		})
	}
}

// --- county handler ---

func TestCountyHandler_Create(t *testing.T) {
	countySvc := &mockCountyService{
		createFn: func(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error) {
			return &domain.County{ID: "county-2", Slug: req.Slug, Name: req.Name, IsActive: true}, nil
		},
	}
	h := NewCountyHandler(countySvc)

	router := gin.New()
	router.POST("/counties", seedAuth("admin-1", "", middleware.RoleAdmin), h.Create)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties", map[string]string{
		"slug": "hays",
		"name": "Hays County",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	data := envelope.Data.(map[string]interface{})
	if data["slug"] != "hays" {
		t.Errorf("slug = %v", data["slug"])
	}
}

func TestCountyHandler_Create_BadSlug(t *testing.T) {
	h := NewCountyHandler(&mockCountyService{})

	router := gin.New()
	router.POST("/counties", seedAuth("admin-1", "", middleware.RoleAdmin), h.Create)

	w, _ := doJSON(t, router, http.MethodPost, "/counties", map[string]string{
		"slug": "Hays County!",
		"name": "Hays County",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCountyHandler_Create_SlugTaken(t *testing.T) {
	countySvc := &mockCountyService{
		createFn: func(ctx context.Context, req *dto.CreateCountyRequest) (*domain.County, error) {
			return nil, service.ErrCountySlugTaken
		},
	}
	h := NewCountyHandler(countySvc)

	router := gin.New()
	router.POST("/counties", seedAuth("admin-1", "", middleware.RoleAdmin), h.Create)

	w, envelope := doJSON(t, router, http.MethodPost, "/counties", map[string]string{
		"slug": "travis",
		"name": "Travis County",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if envelope.Error.Code != response.ErrCodeConflict {
		t.Errorf("code = %s", envelope.Error.Code)
	}
}
