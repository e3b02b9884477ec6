package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionDelete   AuditAction = "delete"
	AuditActionActivate AuditAction = "activate"
	AuditActionPurchase AuditAction = "purchase"
	AuditActionRedeem   AuditAction = "redeem"
	AuditActionGrant    AuditAction = "grant"
	AuditActionResolve  AuditAction = "resolve"
	AuditActionView     AuditAction = "view"
)

// Context keys for audit data
const (
	ContextKeyAuditResourceType = "audit_resource_type"
	ContextKeyAuditResourceID   = "audit_resource_id"
	ContextKeyAuditMetadata     = "audit_metadata"
)

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	ID           string                 `json:"id"`
	CountyID     *string                `json:"county_id,omitempty"`
	UserID       *string                `json:"user_id,omitempty"`
	UserRole     string                 `json:"user_role,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	StatusCode   int                    `json:"status_code"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	// DB is the PostgreSQL connection pool for storing audit logs
	DB *pgxpool.Pool
	// BufferSize is the size of the async audit buffer (default: 1000)
	BufferSize int
	// FlushInterval is how often to flush the buffer (default: 5 seconds)
	FlushInterval time.Duration
	// BatchSize is the maximum number of entries to insert in one batch (default: 100)
	BatchSize int
	// SkipPaths is a list of path prefixes to skip auditing
	SkipPaths []string
	// SkipMethods is a list of HTTP methods to skip (default: GET, HEAD, OPTIONS)
	SkipMethods []string
}

// DefaultAuditConfig returns default configuration
func DefaultAuditConfig(db *pgxpool.Pool) *AuditConfig {
	return &AuditConfig{
		DB:            db,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		BatchSize:     100,
		SkipPaths:     []string{"/health", "/ready"},
		SkipMethods:   []string{"GET", "HEAD", "OPTIONS"},
	}
}

// AuditLogger handles async audit logging
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// For testing: collect entries instead of writing to DB
	testMode    bool
	testEntries []*AuditEntry
	testMu      sync.Mutex
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log adds an audit entry to the buffer (non-blocking)
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
		// Buffer full, drop entry. Audit is best-effort and must never
		// block the request path.
	}
}

// Close gracefully shuts down the audit logger
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		al.cancel()
		close(al.buffer)
		al.wg.Wait()
	})
	return nil
}

// SetTestMode enables test mode which collects entries instead of writing to DB
func (al *AuditLogger) SetTestMode(enabled bool) {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	al.testMode = enabled
	if enabled {
		al.testEntries = make([]*AuditEntry, 0)
	}
}

// GetTestEntries returns collected test entries (only in test mode)
func (al *AuditLogger) GetTestEntries() []*AuditEntry {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	result := make([]*AuditEntry, len(al.testEntries))
	copy(result, al.testEntries)
	return result
}

// worker processes audit entries in the background
func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				if len(batch) > 0 {
					al.flush(batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-al.ctx.Done():
			if len(batch) > 0 {
				al.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of entries to the database
func (al *AuditLogger) flush(entries []*AuditEntry) {
	if len(entries) == 0 {
		return
	}

	al.testMu.Lock()
	if al.testMode {
		al.testEntries = append(al.testEntries, entries...)
		al.testMu.Unlock()
		return
	}
	al.testMu.Unlock()

	if al.config.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := `
		INSERT INTO audit_logs (
			id, county_id, user_id, user_role,
			action, resource_type, resource_id,
			ip_address, request_id, status_code, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	batch := &pgx.Batch{}
	for _, entry := range entries {
		metadataJSON, _ := json.Marshal(entry.Metadata)
		if string(metadataJSON) == "null" {
			metadataJSON = []byte("{}")
		}

		batch.Queue(query,
			entry.ID, entry.CountyID, entry.UserID, entry.UserRole,
			string(entry.Action), entry.ResourceType, entry.ResourceID,
			entry.IPAddress, entry.RequestID, entry.StatusCode,
			metadataJSON, entry.CreatedAt,
		)
	}

	// Audit writes are best-effort; a failed batch is dropped.
	br := al.config.DB.SendBatch(ctx, batch)
	_ = br.Close()
}

// AuditMiddleware creates a new audit logging middleware
func AuditMiddleware(logger *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		config := logger.config

		for _, path := range config.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		for _, method := range config.SkipMethods {
			if c.Request.Method == method {
				c.Next()
				return
			}
		}

		startTime := time.Now()

		c.Next()

		entry := &AuditEntry{
			ID:         uuid.New().String(),
			StatusCode: c.Writer.Status(),
			CreatedAt:  startTime,
		}

		// User info is set by the JWT middleware
		if userID, ok := GetUserID(c); ok && userID != "" {
			entry.UserID = &userID
		}
		if role, ok := GetRole(c); ok {
			entry.UserRole = role
		}
		if countyID, ok := GetTokenCountyID(c); ok && countyID != "" {
			entry.CountyID = &countyID
		}

		entry.Action = mapAction(c.Request.Method, c.Request.URL.Path)
		entry.ResourceType, entry.ResourceID = extractResource(c.Request.URL.Path)

		// Handlers may override with more precise resource info
		if rt, exists := c.Get(ContextKeyAuditResourceType); exists {
			entry.ResourceType = rt.(string)
		}
		if rid, exists := c.Get(ContextKeyAuditResourceID); exists {
			if s, ok := rid.(string); ok && s != "" {
				entry.ResourceID = &s
			}
		}
		if meta, exists := c.Get(ContextKeyAuditMetadata); exists {
			entry.Metadata = meta.(map[string]interface{})
		}

		entry.IPAddress = getClientIP(c)
		entry.RequestID = c.GetHeader("X-Request-ID")

		logger.Log(entry)
	}
}

// mapAction maps HTTP method and path to an audit action
func mapAction(method, path string) AuditAction {
	pathLower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(pathLower, "/activate"):
		return AuditActionActivate
	case strings.Contains(pathLower, "/purchases"):
		return AuditActionPurchase
	case strings.Contains(pathLower, "/redemptions") || strings.HasSuffix(pathLower, "/redeem"):
		return AuditActionRedeem
	case strings.Contains(pathLower, "/vouchers/grant"):
		return AuditActionGrant
	case strings.HasSuffix(pathLower, "/resolve"):
		return AuditActionResolve
	}

	switch method {
	case http.MethodPost:
		return AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return AuditActionUpdate
	case http.MethodDelete:
		return AuditActionDelete
	default:
		return AuditActionView
	}
}

// extractResource extracts resource type and ID from a county-scoped path.
// Example: /api/v1/counties/lake/deals/123 -> ("deal", "123")
func extractResource(path string) (resourceType string, resourceID *string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Skip the /api/v1/counties/:slug prefix when present
	start := 0
	for i, part := range parts {
		if part == "counties" && i+1 < len(parts) {
			start = i + 2
			break
		}
	}
	if start >= len(parts) {
		start = 0
	}

	resourceType = parts[start]
	if strings.HasSuffix(resourceType, "s") {
		resourceType = resourceType[:len(resourceType)-1]
	}

	if start+1 < len(parts) {
		candidate := parts[start+1]
		if _, err := uuid.Parse(candidate); err == nil {
			resourceID = &candidate
		}
	}

	return resourceType, resourceID
}

// getClientIP extracts the client IP address
func getClientIP(c *gin.Context) string {
	xff := c.GetHeader("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.GetHeader("X-Real-IP")
	if xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// SetAuditResourceType sets the resource type for audit logging
func SetAuditResourceType(c *gin.Context, resourceType string) {
	c.Set(ContextKeyAuditResourceType, resourceType)
}

// SetAuditResourceID sets the resource ID for audit logging
func SetAuditResourceID(c *gin.Context, resourceID string) {
	c.Set(ContextKeyAuditResourceID, resourceID)
}

// SetAuditMetadata sets additional metadata for audit logging
func SetAuditMetadata(c *gin.Context, metadata map[string]interface{}) {
	c.Set(ContextKeyAuditMetadata, metadata)
}
