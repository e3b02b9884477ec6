package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// ReviewTaskHandler handles the operator review queue
type ReviewTaskHandler struct {
	reviewTaskService service.ReviewTaskService
}

// NewReviewTaskHandler creates a new ReviewTaskHandler
func NewReviewTaskHandler(reviewTaskService service.ReviewTaskService) *ReviewTaskHandler {
	return &ReviewTaskHandler{
		reviewTaskService: reviewTaskService,
	}
}

// List handles GET /counties/:county/review-tasks
func (h *ReviewTaskHandler) List(c *gin.Context) {
	var filter dto.ReviewTaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	tasks, total, err := h.reviewTaskService.List(c.Request.Context(), CountyID(c), &filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(tasks, filter.Page, filter.Limit, int64(total)))
}

// Resolve handles POST /counties/:county/review-tasks/:id/resolve
func (h *ReviewTaskHandler) Resolve(c *gin.Context) {
	if err := h.reviewTaskService.Resolve(c.Request.Context(), CountyID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuditResourceType(c, "review_task")
	middleware.SetAuditResourceID(c, c.Param("id"))
	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Review task resolved"}))
}
