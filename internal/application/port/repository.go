package port

import (
	"context"

	"github.com/garyjia/ai-collections/internal/domain/entity"
)

// RecommendationFilter narrows recommendation listings
type RecommendationFilter struct {
	Status     entity.RecommendationStatus
	CustomerID string
	Limit      int
	Offset     int
}

// RecommendationRepository defines persistence operations for CollectionRecommendation
type RecommendationRepository interface {
	Create(ctx context.Context, rec *entity.CollectionRecommendation) error
	GetByID(ctx context.Context, id string) (*entity.CollectionRecommendation, error)
	// GetPendingByInvoiceID returns the pending recommendation for an invoice, or nil when there is none
	GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*entity.CollectionRecommendation, error)
	UpdateStatus(ctx context.Context, id string, status entity.RecommendationStatus) error
	List(ctx context.Context, filter RecommendationFilter) ([]*entity.CollectionRecommendation, error)
}

// ApprovalRepository defines persistence operations for Approval
type ApprovalRepository interface {
	// Create returns ErrApprovalExists when the recommendation was already decided
	Create(ctx context.Context, approval *entity.Approval) error
	GetByID(ctx context.Context, id string) (*entity.Approval, error)
	GetByRecommendationID(ctx context.Context, recommendationID string) (*entity.Approval, error)
	// Update persists state, execution and outcome fields only while the stored
	// state is still fromState. Otherwise it returns workflow.ErrInvalidTransition.
	Update(ctx context.Context, approval *entity.Approval, fromState string) error
	// ListExecutionRequested returns approved or modified approvals flagged for deferred execution
	ListExecutionRequested(ctx context.Context, limit int) ([]*entity.Approval, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
