package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewTaskKind identifies what kind of anomaly the passive monitor flagged.
type ReviewTaskKind string

const (
	ReviewTaskUserPurchaseRate  ReviewTaskKind = "user_purchase_rate"
	ReviewTaskDealPurchaseRate  ReviewTaskKind = "deal_purchase_rate"
	ReviewTaskFailedPaymentRate ReviewTaskKind = "failed_payment_rate"
	ReviewTaskPurchaseFailure   ReviewTaskKind = "purchase_failure"
)

// ReviewTask is a durable advisory task for human follow-up. Tasks are
// persisted rather than held in process memory so they survive restarts and
// are visible to every instance. They never gate or reverse the purchase
// that produced them.
type ReviewTask struct {
	ID        string                 `json:"id"`
	CountyID  string                 `json:"county_id"`
	Kind      ReviewTaskKind         `json:"kind"`
	SubjectID string                 `json:"subject_id"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Resolved  bool                   `json:"resolved"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewReviewTask creates an unresolved review task.
func NewReviewTask(countyID string, kind ReviewTaskKind, subjectID string, details map[string]interface{}) (*ReviewTask, error) {
	if countyID == "" {
		return nil, errors.New("county_id is required")
	}
	if subjectID == "" {
		return nil, errors.New("subject_id is required")
	}

	return &ReviewTask{
		ID:        uuid.New().String(),
		CountyID:  countyID,
		Kind:      kind,
		SubjectID: subjectID,
		Details:   details,
		CreatedAt: time.Now(),
	}, nil
}
