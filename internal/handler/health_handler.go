package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/pkg/database"
	"github.com/terrep263/lakedirectory-sub002/pkg/redis"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// HealthHandler reports process liveness and dependency readiness
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(map[string]string{"status": "ok"}))
}

// Ready handles GET /ready and checks the backing stores
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable("One or more dependencies are unavailable"))
		return
	}
	c.JSON(http.StatusOK, response.Success(checks))
}
