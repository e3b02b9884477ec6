package service

import (
	"context"

	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/dto"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
)

// ReviewTaskService defines the interface for the monitor's advisory task queue
type ReviewTaskService interface {
	// List retrieves review tasks for a county, optionally filtered on
	// resolution state
	List(ctx context.Context, countyID string, filter *dto.ReviewTaskListFilter) ([]*domain.ReviewTask, int, error)
	// Resolve marks a task as handled
	Resolve(ctx context.Context, countyID, taskID string) error
}

// reviewTaskService implements ReviewTaskService
type reviewTaskService struct {
	taskRepo repository.ReviewTaskRepository
}

// NewReviewTaskService creates a new ReviewTaskService
func NewReviewTaskService(taskRepo repository.ReviewTaskRepository) ReviewTaskService {
	return &reviewTaskService{
		taskRepo: taskRepo,
	}
}

// List retrieves review tasks for a county
func (s *reviewTaskService) List(ctx context.Context, countyID string, filter *dto.ReviewTaskListFilter) ([]*domain.ReviewTask, int, error) {
	filter.SetDefaults()
	offset := (filter.Page - 1) * filter.Limit
	return s.taskRepo.List(ctx, countyID, filter.Resolved, filter.Limit, offset)
}

// Resolve marks a task as handled
func (s *reviewTaskService) Resolve(ctx context.Context, countyID, taskID string) error {
	return s.taskRepo.Resolve(ctx, countyID, taskID)
}
