package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditLogger() *AuditLogger {
	logger := NewAuditLogger(&AuditConfig{
		BufferSize:    10,
		FlushInterval: 10 * time.Millisecond,
		BatchSize:     1,
		SkipPaths:     []string{"/health"},
		SkipMethods:   []string{"GET", "HEAD", "OPTIONS"},
	})
	logger.SetTestMode(true)
	return logger
}

func waitForEntries(t *testing.T, logger *AuditLogger, want int) []*AuditEntry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries := logger.GetTestEntries()
		if len(entries) >= want {
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d audit entries, got %d", want, len(logger.GetTestEntries()))
	return nil
}

func TestAuditMiddleware(t *testing.T) {
	t.Run("records mutating request", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()

		router := gin.New()
		router.Use(AuditMiddleware(logger))
		router.POST("/api/v1/counties/lake/deals", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/counties/lake/deals", nil)
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		entries := waitForEntries(t, logger, 1)
		entry := entries[0]
		assert.Equal(t, AuditActionCreate, entry.Action)
		assert.Equal(t, "deal", entry.ResourceType)
		assert.Equal(t, http.StatusCreated, entry.StatusCode)
		assert.Equal(t, "req-1", entry.RequestID)
	})

	t.Run("skips GET requests", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()

		router := gin.New()
		router.Use(AuditMiddleware(logger))
		router.GET("/api/v1/counties/lake/deals", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/counties/lake/deals", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, logger.GetTestEntries())
	})

	t.Run("skips configured paths", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()

		router := gin.New()
		router.Use(AuditMiddleware(logger))
		router.POST("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, logger.GetTestEntries())
	})

	t.Run("handler overrides resource info", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()

		purchaseID := uuid.New().String()
		dealID := uuid.New().String()

		router := gin.New()
		router.Use(AuditMiddleware(logger))
		router.POST("/api/v1/counties/lake/purchases", func(c *gin.Context) {
			SetAuditResourceType(c, "purchase")
			SetAuditResourceID(c, purchaseID)
			SetAuditMetadata(c, map[string]interface{}{"deal_id": dealID})
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/counties/lake/purchases", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		entries := waitForEntries(t, logger, 1)
		entry := entries[0]
		assert.Equal(t, "purchase", entry.ResourceType)
		require.NotNil(t, entry.ResourceID)
		assert.Equal(t, purchaseID, *entry.ResourceID)
		assert.Equal(t, dealID, entry.Metadata["deal_id"])
	})

	t.Run("carries user context from JWT middleware", func(t *testing.T) {
		logger := newTestAuditLogger()
		defer logger.Close()

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(ContextKeyUserID, "user-1")
			c.Set(ContextKeyRole, RoleVendor)
			c.Set(ContextKeyCountyID, "county-1")
			c.Next()
		})
		router.Use(AuditMiddleware(logger))
		router.POST("/api/v1/counties/lake/deals", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/counties/lake/deals", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		entries := waitForEntries(t, logger, 1)
		entry := entries[0]
		require.NotNil(t, entry.UserID)
		assert.Equal(t, "user-1", *entry.UserID)
		assert.Equal(t, RoleVendor, entry.UserRole)
		require.NotNil(t, entry.CountyID)
		assert.Equal(t, "county-1", *entry.CountyID)
	})
}

func TestMapAction(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected AuditAction
	}{
		{"activate endpoint", http.MethodPost, "/api/v1/counties/lake/deals/123/activate", AuditActionActivate},
		{"purchase endpoint", http.MethodPost, "/api/v1/counties/lake/purchases", AuditActionPurchase},
		{"redeem endpoint", http.MethodPost, "/api/v1/counties/lake/redemptions", AuditActionRedeem},
		{"grant endpoint", http.MethodPost, "/api/v1/counties/lake/vouchers/grant", AuditActionGrant},
		{"resolve endpoint", http.MethodPost, "/api/v1/counties/lake/review-tasks/123/resolve", AuditActionResolve},
		{"plain create", http.MethodPost, "/api/v1/counties/lake/deals", AuditActionCreate},
		{"update", http.MethodPatch, "/api/v1/counties/lake/deals/123", AuditActionUpdate},
		{"delete", http.MethodDelete, "/api/v1/counties/lake/deals/123", AuditActionDelete},
		{"fallback view", http.MethodGet, "/api/v1/counties/lake/deals", AuditActionView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapAction(tt.method, tt.path))
		})
	}
}

func TestExtractResource(t *testing.T) {
	dealID := uuid.New().String()

	t.Run("county scoped with id", func(t *testing.T) {
		resourceType, resourceID := extractResource("/api/v1/counties/lake/deals/" + dealID)
		assert.Equal(t, "deal", resourceType)
		require.NotNil(t, resourceID)
		assert.Equal(t, dealID, *resourceID)
	})

	t.Run("county scoped without id", func(t *testing.T) {
		resourceType, resourceID := extractResource("/api/v1/counties/lake/purchases")
		assert.Equal(t, "purchase", resourceType)
		assert.Nil(t, resourceID)
	})

	t.Run("non-uuid segment ignored", func(t *testing.T) {
		_, resourceID := extractResource("/api/v1/counties/lake/vouchers/grant")
		assert.Nil(t, resourceID)
	})
}
